package group

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spelld/pkg/kvtable/memtable"
)

func TestEmptyPrefixIsAlwaysGroupZero(t *testing.T) {
	table := memtable.New()
	batch := table.NewBatch()
	reg := New(table, batch)

	g, err := reg.Lookup("")
	require.NoError(t, err)
	require.Equal(t, uint32(0), g)

	g, err = reg.Enable("", "")
	require.NoError(t, err)
	require.Equal(t, uint32(0), g)
}

func TestEnableAllocatesSequentialGroups(t *testing.T) {
	table := memtable.New()
	batch := table.NewBatch()
	reg := New(table, batch)

	a, err := reg.Enable("fieldA", "")
	require.NoError(t, err)
	b, err := reg.Enable("fieldB", "")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.NoError(t, batch.Commit())

	reg2 := New(table, table.NewBatch())
	got, err := reg2.Lookup("fieldA")
	require.NoError(t, err)
	require.Equal(t, a, got)
}

func TestEnableIsIdempotent(t *testing.T) {
	table := memtable.New()
	batch := table.NewBatch()
	reg := New(table, batch)

	a, err := reg.Enable("fieldA", "")
	require.NoError(t, err)
	b, err := reg.Enable("fieldA", "")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestAliasSharesGroup(t *testing.T) {
	table := memtable.New()
	batch := table.NewBatch()
	reg := New(table, batch)

	a, err := reg.Enable("A", "")
	require.NoError(t, err)
	b, err := reg.Enable("B", "A")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDisableMakesLookupDisabled(t *testing.T) {
	table := memtable.New()
	batch := table.NewBatch()
	reg := New(table, batch)

	_, err := reg.Enable("field", "")
	require.NoError(t, err)
	require.NoError(t, reg.Disable("field"))

	g, err := reg.Lookup("field")
	require.NoError(t, err)
	require.Equal(t, Disabled, g)
}

func TestUnregisteredPrefixIsDisabled(t *testing.T) {
	table := memtable.New()
	batch := table.NewBatch()
	reg := New(table, batch)

	g, err := reg.Lookup("never-enabled")
	require.NoError(t, err)
	require.Equal(t, Disabled, g)
}

func TestSnapshotReflectsPendingChanges(t *testing.T) {
	table := memtable.New()
	batch := table.NewBatch()
	reg := New(table, batch)

	_, err := reg.Enable("field", "")
	require.NoError(t, err)

	stats, err := reg.Snapshot()
	require.NoError(t, err)
	_, ok := stats.Prefixes["field"]
	require.True(t, ok)
}
