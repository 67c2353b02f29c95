// Package pairfreq implements the word-pair (bigram) frequency counter
// (spec §4.3): same delta-over-persisted shape as wordfreq, but keyed
// on an unordered pair of 32-bit word hashes.
package pairfreq

import (
	"fmt"
	"sort"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/keys"
	"spelld/pkg/spelling/serrors"
	"spelld/pkg/spelling/varint"
	"spelld/pkg/spelling/wordhash"
)

type entry struct {
	group   uint32
	lo, hi  uint32
	newFreq uint64
}

// Store accumulates word-pair frequency deltas across a write session.
type Store struct {
	table kvtable.Table
	delta map[string]*entry
}

func New(table kvtable.Table) *Store {
	return &Store{table: table, delta: make(map[string]*entry)}
}

// canonical sorts the two words' hashes so (a,b) and (b,a) share one key.
func canonical(a, b string) (lo, hi uint32) {
	ha, hb := wordhash.Hash32(a), wordhash.Hash32(b)
	if ha <= hb {
		return ha, hb
	}
	return hb, ha
}

func (s *Store) current(group uint32, lo, hi uint32) (uint64, error) {
	k := pairDeltaKey(group, lo, hi)
	if e, ok := s.delta[k]; ok {
		return e.newFreq, nil
	}
	return s.persisted(group, lo, hi)
}

func (s *Store) persisted(group uint32, lo, hi uint32) (uint64, error) {
	v, ok, err := s.table.GetExact(keys.WordPairKey(group, lo, hi))
	if err != nil {
		return 0, fmt.Errorf("pairfreq: load pair: %w", err)
	}
	if !ok {
		return 0, nil
	}
	n, sz := varint.Decode(v)
	if sz <= 0 {
		return 0, fmt.Errorf("pairfreq: decode pair: %w", serrors.ErrCorrupt)
	}
	return n, nil
}

func pairDeltaKey(group, lo, hi uint32) string {
	return string(keys.WordPairKey(group, lo, hi))
}

// Add increments the (a,b) counter by delta. Callers should route an
// empty second word to wordfreq instead (spec: "empty second word
// delegates to the single-word path").
func (s *Store) Add(group uint32, a, b string, delta uint32) error {
	lo, hi := canonical(a, b)
	old, err := s.current(group, lo, hi)
	if err != nil {
		return err
	}
	k := pairDeltaKey(group, lo, hi)
	s.delta[k] = &entry{group: group, lo: lo, hi: hi, newFreq: old + uint64(delta)}
	return nil
}

// Remove decrements the (a,b) counter by delta, flooring at zero.
func (s *Store) Remove(group uint32, a, b string, delta uint32) error {
	lo, hi := canonical(a, b)
	old, err := s.current(group, lo, hi)
	if err != nil {
		return err
	}
	var next uint64
	if uint64(delta) < old {
		next = old - uint64(delta)
	}
	k := pairDeltaKey(group, lo, hi)
	s.delta[k] = &entry{group: group, lo: lo, hi: hi, newFreq: next}
	return nil
}

// Get returns the effective pair frequency, symmetric in a and b.
func (s *Store) Get(group uint32, a, b string) (uint32, error) {
	lo, hi := canonical(a, b)
	n, err := s.current(group, lo, hi)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// Cancel discards all pending deltas.
func (s *Store) Cancel() { s.delta = make(map[string]*entry) }

// Flush writes every touched pair counter into batch, deterministically.
func (s *Store) Flush(batch kvtable.Batch) error {
	ks := make([]string, 0, len(s.delta))
	for k := range s.delta {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	for _, k := range ks {
		e := s.delta[k]
		key := keys.WordPairKey(e.group, e.lo, e.hi)
		if e.newFreq > 0 {
			batch.Put(key, varint.Encode(e.newFreq))
		} else {
			batch.Delete(key)
		}
	}
	s.delta = make(map[string]*entry)
	return nil
}
