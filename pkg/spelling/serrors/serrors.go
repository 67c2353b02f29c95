// Package serrors holds the sentinel errors shared across the spelling
// subsystem, grounded on the teacher's package-level error variables
// (pkg/kms/interface.go: var ErrNotImplemented = errors.New(...)).
package serrors

import "errors"

var (
	// ErrCorrupt marks on-disk data that failed to decode: a malformed
	// varuint, a posting-list size not a multiple of the record width, or
	// a word-id referenced by a posting list but missing from the
	// id->word map. Corruption aborts the current read or write; it is
	// never retried.
	ErrCorrupt = errors.New("spelling: corrupt index data")

	// ErrUnimplemented is returned by TermList position-list methods;
	// spelling term lists carry no term positions.
	ErrUnimplemented = errors.New("spelling: not implemented for spelling term lists")

	// ErrPrefixDisabled names the condition of a prefix with no
	// registered group. The public API never returns it: Session detects
	// a disabled prefix through group.Disabled and turns it into a silent
	// no-op (writes) or a zero/empty result (reads).
	ErrPrefixDisabled = errors.New("spelling: prefix disabled")

	// ErrWordTooShort marks a word of length <= 1, silently ignored by
	// writes.
	ErrWordTooShort = errors.New("spelling: word too short to index")
)
