// Package pebblekv adapts github.com/cockroachdb/pebble to the
// kvtable.Table interface. Grounded on the teacher's pkg/store/pebble.go
// (Open/Get/Set/Delete/NewIter, pebble.Batch.Commit) but re-keyed: this
// package carries no thread/message schema, only raw bytes in and out.
package pebblekv

import (
	"fmt"

	"github.com/cockroachdb/pebble"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/slogging"
)

// Table wraps an open *pebble.DB.
type Table struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database at path.
func Open(path string) (*Table, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		slogging.Error("pebble_open_failed", "path", path, "error", err)
		return nil, fmt.Errorf("pebblekv: open %s: %w", path, err)
	}
	return &Table{db: db}, nil
}

// Close closes the underlying Pebble database.
func (t *Table) Close() error {
	if t.db == nil {
		return nil
	}
	err := t.db.Close()
	t.db = nil
	return err
}

func (t *Table) GetExact(key []byte) ([]byte, bool, error) {
	v, closer, err := t.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebblekv: get %x: %w", key, err)
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *Table) NewCursor() kvtable.Cursor {
	iter, err := t.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		// The teacher's NewIter never fails for an in-process DB handle
		// in practice; surface a cursor that is simply never valid.
		slogging.Error("pebble_new_iter_failed", "error", err)
		return &cursor{iter: nil}
	}
	return &cursor{iter: iter}
}

func (t *Table) NewBatch() kvtable.Batch {
	return &batch{db: t.db, b: t.db.NewBatch()}
}

type cursor struct {
	iter  *pebble.Iterator
	valid bool
}

func (c *cursor) SeekGE(key []byte) bool {
	if c.iter == nil {
		return false
	}
	c.valid = c.iter.SeekGE(key)
	return c.valid
}

func (c *cursor) Valid() bool { return c.iter != nil && c.valid }

func (c *cursor) Next() bool {
	if c.iter == nil {
		return false
	}
	c.valid = c.iter.Next()
	return c.valid
}

func (c *cursor) Key() []byte {
	if c.iter == nil {
		return nil
	}
	return c.iter.Key()
}

func (c *cursor) Value() []byte {
	if c.iter == nil {
		return nil
	}
	return c.iter.Value()
}

func (c *cursor) Close() error {
	if c.iter == nil {
		return nil
	}
	return c.iter.Close()
}

type batch struct {
	db *pebble.DB
	b  *pebble.Batch
}

func (b *batch) Put(key, value []byte) {
	_ = b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) {
	_ = b.b.Delete(key, nil)
}

func (b *batch) Commit() error {
	if err := b.db.Apply(b.b, pebble.Sync); err != nil {
		return fmt.Errorf("pebblekv: commit batch: %w", err)
	}
	return b.b.Close()
}

func (b *batch) Cancel() error {
	return b.b.Close()
}
