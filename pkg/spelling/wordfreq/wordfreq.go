// Package wordfreq implements the per-(group, word) frequency counter
// (spec §4.2), including the in-memory delta map merged at flush and
// the zero-crossing detection that drives fragment-index toggles.
package wordfreq

import (
	"fmt"
	"sort"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/keys"
	"spelld/pkg/spelling/serrors"
	"spelld/pkg/spelling/varint"
)

// Toggle records a word's zero-crossing within one write session: On
// means the word became live (0 -> >0), !On means it became dead.
type Toggle struct {
	Group uint32
	Word  string
	On    bool
}

type entry struct {
	group   uint32
	word    string
	newFreq uint64
}

// Store accumulates frequency deltas in memory across a write session
// and merges them into the host table on Flush.
type Store struct {
	table kvtable.Table
	delta map[string]*entry // keyed by PrefixedWord bytes
}

func New(table kvtable.Table) *Store {
	return &Store{table: table, delta: make(map[string]*entry)}
}

// current returns the effective frequency for (group, word): the
// session's own delta if the word was already touched this session,
// else the persisted value.
func (s *Store) current(group uint32, word string) (uint64, error) {
	pw := string(keys.PrefixedWord(group, word))
	if e, ok := s.delta[pw]; ok {
		return e.newFreq, nil
	}
	return s.persisted(group, word)
}

func (s *Store) persisted(group uint32, word string) (uint64, error) {
	v, ok, err := s.table.GetExact(keys.WordFreqKey(group, word))
	if err != nil {
		return 0, fmt.Errorf("wordfreq: load %q: %w", word, err)
	}
	if !ok {
		return 0, nil
	}
	n, sz := varint.Decode(v)
	if sz <= 0 {
		return 0, fmt.Errorf("wordfreq: decode %q: %w", word, serrors.ErrCorrupt)
	}
	if n == 0 {
		// A stored zero contradicts the "absence means zero" invariant.
		return 0, fmt.Errorf("wordfreq: stored zero frequency for %q: %w", word, serrors.ErrCorrupt)
	}
	return n, nil
}

// Add increments (group, word) by delta. Words of length <= 1 are the
// caller's responsibility to filter (spec: silently ignored).
func (s *Store) Add(group uint32, word string, delta uint32) error {
	old, err := s.current(group, word)
	if err != nil {
		return err
	}
	pw := string(keys.PrefixedWord(group, word))
	s.delta[pw] = &entry{group: group, word: word, newFreq: old + uint64(delta)}
	return nil
}

// Remove decrements (group, word) by delta, flooring at zero.
func (s *Store) Remove(group uint32, word string, delta uint32) error {
	old, err := s.current(group, word)
	if err != nil {
		return err
	}
	var next uint64
	if uint64(delta) < old {
		next = old - uint64(delta)
	}
	pw := string(keys.PrefixedWord(group, word))
	s.delta[pw] = &entry{group: group, word: word, newFreq: next}
	return nil
}

// Get returns the effective frequency for (group, word), delta-over-
// persisted.
func (s *Store) Get(group uint32, word string) (uint32, error) {
	n, err := s.current(group, word)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// Cancel discards all pending deltas.
func (s *Store) Cancel() { s.delta = make(map[string]*entry) }

// Flush writes every touched frequency into batch and returns the
// zero-crossing toggles to forward to the active fragment engine, in
// deterministic (sorted-key) order so repeated flushes of identical
// input produce identical persisted bytes.
func (s *Store) Flush(batch kvtable.Batch) ([]Toggle, error) {
	pwKeys := make([]string, 0, len(s.delta))
	for k := range s.delta {
		pwKeys = append(pwKeys, k)
	}
	sort.Strings(pwKeys)

	var toggles []Toggle
	for _, pw := range pwKeys {
		e := s.delta[pw]
		oldFreq, err := s.persisted(e.group, e.word)
		if err != nil {
			return nil, err
		}
		key := keys.WordFreqKey(e.group, e.word)
		if e.newFreq > 0 {
			batch.Put(key, varint.Encode(e.newFreq))
		} else {
			batch.Delete(key)
		}
		switch {
		case oldFreq == 0 && e.newFreq > 0:
			toggles = append(toggles, Toggle{Group: e.group, Word: e.word, On: true})
		case oldFreq > 0 && e.newFreq == 0:
			toggles = append(toggles, Toggle{Group: e.group, Word: e.word, On: false})
		}
	}
	s.delta = make(map[string]*entry)
	return toggles, nil
}

// WalkAll yields every live (word, freq) pair for group, merging
// pending deltas over persisted values. Persisted words come first, in
// key order; words that exist only in this session's pending deltas
// follow, in no defined order. It supports
// spelling.Session.WalkAllWords.
func (s *Store) WalkAll(group uint32, yield func(word string, freq uint32) error) error {
	prefixKey := keys.WordFreqKey(group, "")
	seen := make(map[string]bool)

	cur := s.table.NewCursor()
	defer cur.Close()
	for ok := cur.SeekGE(prefixKey); ok; ok = cur.Next() {
		k := cur.Key()
		if len(k) < len(prefixKey) || string(k[:len(prefixKey)]) != string(prefixKey) {
			break
		}
		word := string(k[len(prefixKey):])
		seen[word] = true
		freq, err := s.Get(group, word)
		if err != nil {
			return err
		}
		if freq == 0 {
			continue
		}
		if err := yield(word, freq); err != nil {
			return err
		}
	}

	// Words added this session that have no persisted entry yet.
	pwPrefix := string(keys.PrefixedWord(group, ""))
	for pw, e := range s.delta {
		if e.group != group || e.newFreq == 0 {
			continue
		}
		if len(pw) < len(pwPrefix) || pw[:len(pwPrefix)] != pwPrefix {
			continue
		}
		if seen[e.word] {
			continue
		}
		if err := yield(e.word, uint32(e.newFreq)); err != nil {
			return err
		}
	}
	return nil
}
