package spelling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"spelld/pkg/kvtable/memtable"
)

func TestScenario1_EmptyPrefixBasicRecall(t *testing.T) {
	table := memtable.New()
	sess := New(table, FastSS)

	require.NoError(t, sess.AddWord("hello", "", 1))
	require.NoError(t, sess.AddWord("hello", "", 1))
	require.NoError(t, sess.AddWord("help", "", 1))
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	freq, err := sess.GetWordFrequency("hello", "")
	require.NoError(t, err)
	require.Equal(t, uint32(2), freq)

	freq, err = sess.GetWordFrequency("help", "")
	require.NoError(t, err)
	require.Equal(t, uint32(1), freq)

	freq, err = sess.GetWordFrequency("helo", "")
	require.NoError(t, err)
	require.Equal(t, uint32(0), freq)

	tl, err := sess.OpenTermList("helo", "", 2)
	require.NoError(t, err)
	var got []string
	for tl.Next() {
		got = append(got, tl.TermName())
	}
	require.ElementsMatch(t, []string{"hello", "help"}, got)
}

func TestScenario3_IDReuse(t *testing.T) {
	table := memtable.New()
	sess := New(table, FastSS)

	words := make([]string, 1000)
	for i := range words {
		words[i] = wordAt(i)
		require.NoError(t, sess.AddWord(words[i], "", 1))
	}
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	for i := 0; i < 500; i++ {
		require.NoError(t, sess.RemoveWord(words[i], "", 1))
	}
	require.NoError(t, sess.Commit())

	eng, ok := sess.engine.(interface{ Stats() (uint32, int, error) })
	require.True(t, ok)
	max, depth, err := eng.Stats()
	require.NoError(t, err)
	require.Equal(t, uint32(1000), max)
	require.Equal(t, 500, depth)

	sess = New(table, FastSS)
	for i := 0; i < 10; i++ {
		require.NoError(t, sess.AddWord(wordAt(2000+i), "", 1))
	}
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	eng, _ = sess.engine.(interface{ Stats() (uint32, int, error) })
	max, depth, err = eng.Stats()
	require.NoError(t, err)
	require.Equal(t, uint32(1000), max)
	require.Equal(t, 490, depth)
}

func wordAt(i int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	s := make([]byte, 0, 6)
	s = append(s, 'w')
	for i > 0 || len(s) < 4 {
		s = append(s, alphabet[i%len(alphabet)])
		i /= len(alphabet)
	}
	return string(s)
}

func TestScenario4_AliasedGroupsShareWords(t *testing.T) {
	table := memtable.New()
	sess := New(table, FastSS)

	_, err := sess.EnableSpelling("A", "")
	require.NoError(t, err)
	_, err = sess.EnableSpelling("B", "A")
	require.NoError(t, err)
	require.NoError(t, sess.AddWord("foo", "A", 1))
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	freq, err := sess.GetWordFrequency("foo", "B")
	require.NoError(t, err)
	require.Equal(t, uint32(1), freq)
}

func TestScenario5_SingleCharWordIgnored(t *testing.T) {
	table := memtable.New()
	sess := New(table, FastSS)

	require.NoError(t, sess.AddWord("x", "", 1))
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	freq, err := sess.GetWordFrequency("x", "")
	require.NoError(t, err)
	require.Equal(t, uint32(0), freq)
}

func TestScenario6_PairSymmetry(t *testing.T) {
	table := memtable.New()
	sess := New(table, FastSS)

	require.NoError(t, sess.AddWords("new", "york", "", 1))
	require.NoError(t, sess.AddWords("york", "new", "", 1))
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	a, err := sess.GetWordsFrequency("new", "york", "")
	require.NoError(t, err)
	b, err := sess.GetWordsFrequency("york", "new", "")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, uint32(2), a)
}

func TestDisabledPrefixNoOpsAndEmptyReads(t *testing.T) {
	table := memtable.New()
	sess := New(table, FastSS)

	require.NoError(t, sess.AddWord("hello", "", 1))
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	require.NoError(t, sess.DisableSpelling("field"))
	require.NoError(t, sess.AddWord("ignored", "field", 1))
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	freq, err := sess.GetWordFrequency("ignored", "field")
	require.NoError(t, err)
	require.Equal(t, uint32(0), freq)

	tl, err := sess.OpenTermList("ignored", "field", 2)
	require.NoError(t, err)
	require.False(t, tl.Next())
}

func TestIdempotentCommit(t *testing.T) {
	table := memtable.New()
	sess := New(table, FastSS)
	require.NoError(t, sess.AddWord("banana", "", 1))
	require.NoError(t, sess.Commit())
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	freq, err := sess.GetWordFrequency("banana", "")
	require.NoError(t, err)
	require.Equal(t, uint32(1), freq)
}

func TestWalkAllWords(t *testing.T) {
	table := memtable.New()
	sess := New(table, FastSS)
	require.NoError(t, sess.AddWord("apple", "", 3))
	require.NoError(t, sess.AddWord("banana", "", 2))
	require.NoError(t, sess.Commit())

	sess = New(table, FastSS)
	seen := map[string]uint32{}
	err := sess.WalkAllWords(context.Background(), "", nil, func(word string, freq uint32) error {
		seen[word] = freq
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, map[string]uint32{"apple": 3, "banana": 2}, seen)
}

func TestTrigramEngineRecallAndTransposition(t *testing.T) {
	table := memtable.New()
	sess := New(table, Trigram)
	require.NoError(t, sess.AddWord("cat", "", 1))
	require.NoError(t, sess.Commit())

	sess = New(table, Trigram)
	tl, err := sess.OpenTermList("cta", "", 1)
	require.NoError(t, err)
	var got []string
	for tl.Next() {
		got = append(got, tl.TermName())
	}
	require.Contains(t, got, "cat")
}
