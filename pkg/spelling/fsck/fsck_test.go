package fsck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spelld/pkg/kvtable/memtable"
	"spelld/pkg/spelling/fastss"
)

func TestRunOnCleanIndexFindsNoIssues(t *testing.T) {
	table := memtable.New()
	eng := fastss.New(table)
	eng.ToggleWord("hello", true)
	eng.ToggleWord("world", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	rep, err := Run(table)
	require.NoError(t, err)
	require.Empty(t, rep.Issues)
	require.Equal(t, 2, rep.IDsScanned)
	require.NotZero(t, rep.PostingsScanned)
}

func TestRunIgnoresAllocatorReservedKeys(t *testing.T) {
	table := memtable.New()
	eng := fastss.New(table)
	eng.ToggleWord("banana", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	rep, err := Run(table)
	require.NoError(t, err)
	for _, issue := range rep.Issues {
		require.NotEqual(t, "malformed_posting", issue.Kind)
		require.NotEqual(t, "dangling_posting", issue.Kind)
	}
}

func TestRunDetectsDanglingPosting(t *testing.T) {
	table := memtable.New()
	eng := fastss.New(table)
	eng.ToggleWord("hello", true)
	batch := table.NewBatch()
	require.NoError(t, eng.MergeFragmentChanges(batch))
	require.NoError(t, batch.Commit())

	// Manually delete the id->word mapping out from under the posting
	// lists the merge just wrote, simulating corruption.
	b := table.NewBatch()
	b.Delete([]byte{'W', 'I', 0, 0, 0, 0})
	require.NoError(t, b.Commit())

	rep, err := Run(table)
	require.NoError(t, err)
	require.NotEmpty(t, rep.Issues)
	found := false
	for _, issue := range rep.Issues {
		if issue.Kind == "dangling_posting" {
			found = true
		}
	}
	require.True(t, found)
}
