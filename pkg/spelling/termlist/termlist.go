// Package termlist adapts an ortree.Iterator plus a frequency lookup
// into the TermList shape spec.md §6.2 exposes to callers: next/skip_to/
// at_end, plus the frequency and size accessors a ranker needs.
package termlist

import (
	"spelld/pkg/spelling/ortree"
	"spelld/pkg/spelling/serrors"
)

// FreqLookup resolves a candidate term's frequency within the active
// group. It is supplied by the Session that opened the term list.
type FreqLookup func(term string) (uint32, error)

// TermList is the Go binding of spec.md's language-neutral TermList
// iterator.
type TermList interface {
	Next() bool
	SkipTo(term string) bool
	AtEnd() bool
	TermName() string
	TermFreq() (uint32, error)
	CollectionFreq() (uint32, error)
	ApproxSize() int
	Close() error
}

type termList struct {
	it       ortree.Iterator
	lookup   FreqLookup
	atEnd    bool
	hasStart bool
}

// New wraps it as a TermList, resolving frequencies through lookup.
func New(it ortree.Iterator, lookup FreqLookup) TermList {
	return &termList{it: it, lookup: lookup}
}

func (t *termList) Next() bool {
	if t.atEnd {
		return false
	}
	t.hasStart = true
	if !t.it.Next() {
		t.atEnd = true
		return false
	}
	return true
}

// SkipTo advances until the current term is >= target, returning false
// once the underlying iterator is exhausted.
func (t *termList) SkipTo(target string) bool {
	if t.atEnd {
		return false
	}
	if t.hasStart && t.it.Current() >= target {
		return true
	}
	for t.Next() {
		if t.it.Current() >= target {
			return true
		}
	}
	return false
}

func (t *termList) AtEnd() bool { return t.atEnd }

func (t *termList) TermName() string {
	if t.atEnd {
		return ""
	}
	return t.it.Current()
}

func (t *termList) TermFreq() (uint32, error) {
	return t.lookup(t.TermName())
}

// CollectionFreq resolves to the same group-wide count as TermFreq:
// this subsystem keeps no per-document occurrence count distinct from
// the group total.
func (t *termList) CollectionFreq() (uint32, error) {
	return t.lookup(t.TermName())
}

func (t *termList) ApproxSize() int { return t.it.ApproxSize() }
func (t *termList) Close() error    { return t.it.Close() }

// Position returns serrors.ErrUnimplemented: spelling term lists carry
// no term positions (spec.md §7).
func Position(TermList) (int, error) {
	return 0, serrors.ErrUnimplemented
}
