package fastss

import (
	"encoding/binary"
	"fmt"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/keys"
	"spelld/pkg/spelling/serrors"
)

// allocator manages the FastSS word-id space: INDEXMAX is the
// never-yet-used high-water mark, INDEXSTACK a LIFO of ids freed by
// removed words. Allocation pops the stack before advancing the
// high-water mark, so freed ids are reused before INDEXMAX grows. This
// is the free-list variant spec §9 marks as authoritative.
type allocator struct {
	table kvtable.Table

	max       uint32
	maxLoaded bool

	stack       []uint32
	stackLoaded bool
}

func newAllocator(table kvtable.Table) *allocator {
	return &allocator{table: table}
}

func (a *allocator) loadMax() error {
	if a.maxLoaded {
		return nil
	}
	v, ok, err := a.table.GetExact(keys.IndexMaxKey())
	if err != nil {
		return fmt.Errorf("fastss: load INDEXMAX: %w", err)
	}
	if !ok {
		a.max = 0
		a.maxLoaded = true
		return nil
	}
	if len(v) != 4 {
		return fmt.Errorf("fastss: INDEXMAX width %d: %w", len(v), serrors.ErrCorrupt)
	}
	a.max = binary.LittleEndian.Uint32(v)
	a.maxLoaded = true
	return nil
}

func (a *allocator) loadStack() error {
	if a.stackLoaded {
		return nil
	}
	v, ok, err := a.table.GetExact(keys.IndexStackKey())
	if err != nil {
		return fmt.Errorf("fastss: load INDEXSTACK: %w", err)
	}
	if !ok {
		a.stack = nil
		a.stackLoaded = true
		return nil
	}
	if len(v)%4 != 0 {
		return fmt.Errorf("fastss: INDEXSTACK width %d: %w", len(v), serrors.ErrCorrupt)
	}
	a.stack = make([]uint32, len(v)/4)
	for i := range a.stack {
		a.stack[i] = binary.LittleEndian.Uint32(v[i*4:])
	}
	a.stackLoaded = true
	return nil
}

// Allocate returns a reusable id from the free-list if one exists,
// otherwise the next never-used id.
func (a *allocator) Allocate() (uint32, error) {
	if err := a.loadStack(); err != nil {
		return 0, err
	}
	if n := len(a.stack); n > 0 {
		id := a.stack[n-1]
		a.stack = a.stack[:n-1]
		return id, nil
	}
	if err := a.loadMax(); err != nil {
		return 0, err
	}
	id := a.max
	a.max++
	return id, nil
}

// Free pushes id back onto the free-list.
func (a *allocator) Free(id uint32) error {
	if err := a.loadStack(); err != nil {
		return err
	}
	a.stack = append(a.stack, id&0x00FFFFFF)
	return nil
}

// Snapshot returns (max, stack depth) without mutating state, for the
// inspect CLI.
func (a *allocator) Snapshot() (uint32, int, error) {
	if err := a.loadMax(); err != nil {
		return 0, 0, err
	}
	if err := a.loadStack(); err != nil {
		return 0, 0, err
	}
	return a.max, len(a.stack), nil
}

// Flush writes allocator state into batch if it was touched this
// session.
func (a *allocator) Flush(batch kvtable.Batch) {
	if a.maxLoaded {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], a.max)
		batch.Put(keys.IndexMaxKey(), b[:])
	}
	if a.stackLoaded {
		out := make([]byte, 4*len(a.stack))
		for i, id := range a.stack {
			binary.LittleEndian.PutUint32(out[i*4:], id)
		}
		if len(out) == 0 {
			batch.Delete(keys.IndexStackKey())
		} else {
			batch.Put(keys.IndexStackKey(), out)
		}
	}
}

// Cancel discards any state loaded/mutated this session so the next
// session reloads cleanly from disk.
func (a *allocator) Cancel() {
	a.maxLoaded = false
	a.stackLoaded = false
	a.stack = nil
}
