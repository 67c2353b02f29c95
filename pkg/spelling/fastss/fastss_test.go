package fastss

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spelld/pkg/kvtable/memtable"
)

func TestToggleAndMergeSupportsExactAndOneEditRecall(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("hello", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	it, err := eng.OpenCandidates("hello", 0)
	require.NoError(t, err)
	require.True(t, it.Next())
	require.Equal(t, "hello", it.Current())

	eng = New(table)
	it, err = eng.OpenCandidates("helo", 1)
	require.NoError(t, err)
	var got []string
	for it.Next() {
		got = append(got, it.Current())
	}
	require.Contains(t, got, "hello")
}

func TestRemoveDropsWordFromPostings(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("apple", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	eng.ToggleWord("apple", false)
	batch = table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	it, err := eng.OpenCandidates("apple", 0)
	require.NoError(t, err)
	require.False(t, it.Next())
}

func TestFreshlyAddedWordResolvesWithinSameMerge(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("banana", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	// bandana shares posting keys with the persisted banana, so this merge
	// compares bandana's not-yet-committed id against existing entries.
	eng = New(table)
	eng.ToggleWord("bandana", true)
	batch = table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	it, err := eng.OpenCandidates("banana", 0)
	require.NoError(t, err)
	require.True(t, it.Next())
	require.Equal(t, "banana", it.Current())
}

func TestIDReuseBeforeMaxAdvances(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("one", true)
	eng.ToggleWord("two", true)
	eng.ToggleWord("three", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	eng.ToggleWord("two", false)
	batch = table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	maxBefore, depthBefore, err := eng.Stats()
	require.NoError(t, err)
	require.Equal(t, uint32(3), maxBefore)
	require.Equal(t, 1, depthBefore)

	eng.ToggleWord("four", true)
	batch = table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	maxAfter, depthAfter, err := eng.Stats()
	require.NoError(t, err)
	require.Equal(t, uint32(3), maxAfter, "reused the freed id instead of advancing max")
	require.Equal(t, 0, depthAfter)
}

func TestMergeIsIdempotentOnSecondCall(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("word", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())
}

func TestEffectiveVariantSkipsOnlyMaskedPositions(t *testing.T) {
	require.Equal(t, "bc", EffectiveVariant("abc", 0b001))
	require.Equal(t, "abc", EffectiveVariant("abc", 0))
	require.Equal(t, "a", EffectiveVariant("abc", 0b110))
}

func TestCancelDiscardsPendingAndAllocatorState(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("word", true)
	_, _, err := eng.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, eng.Pending())
	eng.Cancel()
	require.Equal(t, 0, eng.Pending())
	require.False(t, eng.alloc.maxLoaded)
	require.False(t, eng.alloc.stackLoaded)
}
