// Package spelling is the public entry point for the spelling-
// correction subsystem: a write Session wiring the prefix-group
// registry, word/pair frequency stores, and one active fragment engine
// behind the tagged-variant capability set spec.md §9 describes
// ({toggle_word, populate_word, merge_fragment_changes, cancel}).
package spelling

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/fastss"
	"spelld/pkg/spelling/group"
	"spelld/pkg/spelling/metrics"
	"spelld/pkg/spelling/ortree"
	"spelld/pkg/spelling/pairfreq"
	"spelld/pkg/spelling/ratelimit"
	"spelld/pkg/spelling/slogging"
	"spelld/pkg/spelling/termlist"
	"spelld/pkg/spelling/trigram"
	"spelld/pkg/spelling/wordfreq"
)

// EngineKind selects which fragment engine a Session runs. Exactly one
// is active per database, per spec.md §9.
type EngineKind int

const (
	Trigram EngineKind = iota
	FastSS
)

// engine is the capability set spec.md §9 requires of a fragment
// engine. Both trigram.Engine and fastss.Engine satisfy it.
type engine interface {
	ToggleWord(word string, on bool)
	Cancel()
	MergeFragmentChanges(batch kvtable.Batch) error
	OpenCandidates(word string, maxEdits int) (ortree.Iterator, error)
}

// Session accumulates one write session's worth of adds/removes in
// memory and materializes them into the host table on Commit, per
// spec.md §5's single-threaded write-session model.
type Session struct {
	table     kvtable.Table
	batch     kvtable.Batch
	committed bool

	groups *group.Registry
	words  *wordfreq.Store
	pairs  *pairfreq.Store
	engine engine
}

// New opens a write Session over table, dispatching fragment-index
// operations to the engine named by kind.
func New(table kvtable.Table, kind EngineKind) *Session {
	batch := table.NewBatch()

	var eng engine
	switch kind {
	case FastSS:
		eng = fastss.New(table)
	default:
		eng = trigram.New(table)
	}

	return &Session{
		table:  table,
		batch:  batch,
		groups: group.New(table, batch),
		words:  wordfreq.New(table),
		pairs:  pairfreq.New(table),
		engine: eng,
	}
}

// EnableSpelling allocates (or, via aliasOf, shares) a group id for
// prefix. The empty prefix is always group 0 and this is a no-op for it.
func (s *Session) EnableSpelling(prefix, aliasOf string) (uint32, error) {
	return s.groups.Enable(prefix, aliasOf)
}

// DisableSpelling removes prefix's registry entry. Existing data for
// its group is left on disk (see DESIGN.md open-question decisions).
func (s *Session) DisableSpelling(prefix string) error {
	return s.groups.Disable(prefix)
}

func (s *Session) lookupGroup(prefix string) (uint32, bool, error) {
	g, err := s.groups.Lookup(prefix)
	if err != nil {
		return 0, false, err
	}
	return g, g != group.Disabled, nil
}

// AddWord increments word's frequency under prefix by delta. Words of
// length <= 1, and any write against a disabled prefix, are silent
// no-ops per spec.md §7.
func (s *Session) AddWord(word, prefix string, delta uint32) error {
	if len([]rune(word)) <= 1 {
		return nil
	}
	g, enabled, err := s.lookupGroup(prefix)
	if err != nil || !enabled {
		return err
	}
	return s.words.Add(g, word, delta)
}

// RemoveWord decrements word's frequency under prefix by delta,
// flooring at zero.
func (s *Session) RemoveWord(word, prefix string, delta uint32) error {
	if len([]rune(word)) <= 1 {
		return nil
	}
	g, enabled, err := s.lookupGroup(prefix)
	if err != nil || !enabled {
		return err
	}
	return s.words.Remove(g, word, delta)
}

// AddWords increments the unordered-pair counter for (a, b) under
// prefix. An empty b delegates to AddWord, per spec.md §4.3.
func (s *Session) AddWords(a, b, prefix string, delta uint32) error {
	if b == "" {
		return s.AddWord(a, prefix, delta)
	}
	g, enabled, err := s.lookupGroup(prefix)
	if err != nil || !enabled {
		return err
	}
	return s.pairs.Add(g, a, b, delta)
}

// RemoveWords decrements the unordered-pair counter for (a, b).
func (s *Session) RemoveWords(a, b, prefix string, delta uint32) error {
	if b == "" {
		return s.RemoveWord(a, prefix, delta)
	}
	g, enabled, err := s.lookupGroup(prefix)
	if err != nil || !enabled {
		return err
	}
	return s.pairs.Remove(g, a, b, delta)
}

// GetWordFrequency returns word's current frequency under prefix,
// session deltas included. A disabled prefix reads as 0.
func (s *Session) GetWordFrequency(word, prefix string) (uint32, error) {
	g, enabled, err := s.lookupGroup(prefix)
	if err != nil || !enabled {
		return 0, err
	}
	return s.words.Get(g, word)
}

// GetWordsFrequency returns the (a, b) pair counter, symmetric in a
// and b. An empty b delegates to GetWordFrequency.
func (s *Session) GetWordsFrequency(a, b, prefix string) (uint32, error) {
	if b == "" {
		return s.GetWordFrequency(a, prefix)
	}
	g, enabled, err := s.lookupGroup(prefix)
	if err != nil || !enabled {
		return 0, err
	}
	return s.pairs.Get(g, a, b)
}

// OpenTermList enumerates candidate words within maxEdits of word
// under prefix. A disabled prefix yields an empty, immediately-
// exhausted term list rather than an error, per spec.md §7.
func (s *Session) OpenTermList(word, prefix string, maxEdits int) (termlist.TermList, error) {
	g, enabled, err := s.lookupGroup(prefix)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return termlist.New(ortree.Empty(), func(string) (uint32, error) { return 0, nil }), nil
	}
	it, err := s.engine.OpenCandidates(word, maxEdits)
	if err != nil {
		return nil, err
	}
	lookup := func(term string) (uint32, error) { return s.words.Get(g, term) }
	return termlist.New(it, lookup), nil
}

// WalkAllWords yields every (word, freq) pair live under prefix:
// persisted words in key order, then words added only in this session,
// in no defined order. limiter, if non-nil, paces the walk so it cannot starve a
// concurrent read session in the same process; pass nil for no
// throttling. A disabled prefix yields nothing.
func (s *Session) WalkAllWords(ctx context.Context, prefix string, limiter *ratelimit.Limiter, yield func(word string, freq uint32) error) error {
	g, enabled, err := s.lookupGroup(prefix)
	if err != nil || !enabled {
		return err
	}
	return s.words.WalkAll(g, func(word string, freq uint32) error {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		return yield(word, freq)
	})
}

// Commit realizes every buffered add/remove into the host table:
// frequency deltas flush first (producing the zero-crossing toggles
// that drive the active fragment engine), then the engine merges its
// pending fragment changes, then the whole batch commits atomically.
// Calling Commit twice with no intervening mutation is a no-op on the
// second call: a kvtable.Batch may not be committed twice, so the
// second call returns immediately instead of re-applying it.
func (s *Session) Commit() error {
	if s.committed {
		return nil
	}

	timer := prometheus.NewTimer(metrics.FlushDuration)
	defer timer.ObserveDuration()

	toggles, err := s.words.Flush(s.batch)
	if err != nil {
		return fmt.Errorf("spelling: flush word frequencies: %w", err)
	}
	if err := s.pairs.Flush(s.batch); err != nil {
		return fmt.Errorf("spelling: flush pair frequencies: %w", err)
	}
	var wordsOn int
	for _, t := range toggles {
		s.engine.ToggleWord(t.Word, t.On)
		if t.On {
			wordsOn++
		}
	}
	if p, ok := s.engine.(interface{ Pending() int }); ok {
		metrics.FragmentsPending.Set(float64(p.Pending()))
	}
	if err := s.engine.MergeFragmentChanges(s.batch); err != nil {
		return fmt.Errorf("spelling: merge fragment changes: %w", err)
	}
	if err := s.batch.Commit(); err != nil {
		return fmt.Errorf("spelling: commit: %w", err)
	}
	s.committed = true
	metrics.WordsIndexed.Add(float64(wordsOn))
	if p, ok := s.engine.(interface{ Pending() int }); ok {
		metrics.FragmentsPending.Set(float64(p.Pending()))
	}
	slogging.Debug("spelling_commit", "toggles", len(toggles))
	return nil
}

// Cancel discards every buffered add/remove and forwards to the host
// table's own cancel.
func (s *Session) Cancel() error {
	s.words.Cancel()
	s.pairs.Cancel()
	s.engine.Cancel()
	return s.batch.Cancel()
}
