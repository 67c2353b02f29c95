package trigram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spelld/pkg/kvtable/memtable"
)

func TestToggleAndMergeRoundTrip(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("hello", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	it, err := eng.OpenCandidates("hello", 0)
	require.NoError(t, err)
	var got []string
	for it.Next() {
		got = append(got, it.Current())
	}
	require.Contains(t, got, "hello")
}

func TestMergeIsIdempotentOnSecondCall(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("abc", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())
}

func TestRemoveDropsWordFromFragments(t *testing.T) {
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

func TestTranspositionToleranceForShortWords(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("cat", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	eng = New(table)
	it, err := eng.OpenCandidates("cta", 1)
	require.NoError(t, err)
	var got []string
	for it.Next() {
		got = append(got, it.Current())
	}
	require.Contains(t, got, "cat")
}

func TestEncodeDecodeWordListRoundTrip(t *testing.T) {
	words := []string{"ant", "anthem", "banana", "bandana"}
	encoded := encodeWordList(words)
	decoded, err := decodeWordList(encoded)
	require.NoError(t, err)
	require.Equal(t, words, decoded)
}

func TestCancelDiscardsPending(t *testing.T) {
	table := memtable.New()
	eng := New(table)
	eng.ToggleWord("word", true)
	require.Equal(t, 1, eng.Pending())
	eng.Cancel()
	require.Equal(t, 0, eng.Pending())
}
