package termlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"spelld/pkg/spelling/ortree"
	"spelld/pkg/spelling/serrors"
)

func freqs(m map[string]uint32) FreqLookup {
	return func(term string) (uint32, error) { return m[term], nil }
}

func TestNextAndTermName(t *testing.T) {
	it := ortree.NewSliceIterator([]string{"cat", "dog"})
	tl := New(it, freqs(map[string]uint32{"cat": 3, "dog": 7}))

	require.True(t, tl.Next())
	require.Equal(t, "cat", tl.TermName())
	f, err := tl.TermFreq()
	require.NoError(t, err)
	require.Equal(t, uint32(3), f)

	require.True(t, tl.Next())
	require.Equal(t, "dog", tl.TermName())

	require.False(t, tl.Next())
	require.True(t, tl.AtEnd())
}

func TestSkipTo(t *testing.T) {
	it := ortree.NewSliceIterator([]string{"ant", "bee", "cat", "dog"})
	tl := New(it, freqs(nil))

	require.True(t, tl.SkipTo("cat"))
	require.Equal(t, "cat", tl.TermName())

	require.True(t, tl.Next())
	require.Equal(t, "dog", tl.TermName())
	require.False(t, tl.Next())
}

func TestEmptyIteratorStartsAtEnd(t *testing.T) {
	tl := New(ortree.Empty(), freqs(nil))
	require.False(t, tl.Next())
	require.True(t, tl.AtEnd())
	require.False(t, tl.SkipTo("anything"))
}

func TestCollectionFreqMatchesTermFreq(t *testing.T) {
	it := ortree.NewSliceIterator([]string{"cat"})
	tl := New(it, freqs(map[string]uint32{"cat": 5}))
	require.True(t, tl.Next())

	tf, err := tl.TermFreq()
	require.NoError(t, err)
	cf, err := tl.CollectionFreq()
	require.NoError(t, err)
	require.Equal(t, tf, cf)
}

func TestPositionIsUnimplemented(t *testing.T) {
	_, err := Position(nil)
	require.True(t, errors.Is(err, serrors.ErrUnimplemented))
}
