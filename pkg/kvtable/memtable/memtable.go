// Package memtable is an in-memory kvtable.Table used by the spelling
// subsystem's tests, grounded on the teacher's preference for a small
// interface with a swappable backing store.
package memtable

import (
	"sort"
	"sync"

	"spelld/pkg/kvtable"
)

// Table is an in-memory map guarded by a mutex; each cursor iterates a
// sorted snapshot of its keys. It is not meant
// for production use, only for exercising the spelling engines without
// a Pebble database on disk.
type Table struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Table {
	return &Table{data: make(map[string][]byte)}
}

func (t *Table) GetExact(key []byte) ([]byte, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *Table) NewCursor() kvtable.Cursor {
	t.mu.RLock()
	keys := make([]string, 0, len(t.data))
	for k := range t.data {
		keys = append(keys, k)
	}
	t.mu.RUnlock()
	sort.Strings(keys)
	return &cursor{table: t, keys: keys, pos: -1}
}

func (t *Table) NewBatch() kvtable.Batch {
	return &batch{table: t}
}

type cursor struct {
	table *Table
	keys  []string
	pos   int
}

func (c *cursor) SeekGE(key []byte) bool {
	k := string(key)
	i := sort.SearchStrings(c.keys, k)
	c.pos = i
	return c.Valid()
}

func (c *cursor) Valid() bool { return c.pos >= 0 && c.pos < len(c.keys) }

func (c *cursor) Next() bool {
	if c.pos < 0 {
		return false
	}
	c.pos++
	return c.Valid()
}

func (c *cursor) Key() []byte {
	if !c.Valid() {
		return nil
	}
	return []byte(c.keys[c.pos])
}

func (c *cursor) Value() []byte {
	if !c.Valid() {
		return nil
	}
	c.table.mu.RLock()
	defer c.table.mu.RUnlock()
	return c.table.data[c.keys[c.pos]]
}

func (c *cursor) Close() error { return nil }

type op struct {
	del   bool
	key   string
	value []byte
}

type batch struct {
	table *Table
	ops   []op
}

func (b *batch) Put(key, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	b.ops = append(b.ops, op{key: string(key), value: v})
}

func (b *batch) Delete(key []byte) {
	b.ops = append(b.ops, op{del: true, key: string(key)})
}

func (b *batch) Commit() error {
	b.table.mu.Lock()
	defer b.table.mu.Unlock()
	for _, o := range b.ops {
		if o.del {
			delete(b.table.data, o.key)
			continue
		}
		b.table.data[o.key] = o.value
	}
	b.ops = nil
	return nil
}

func (b *batch) Cancel() error {
	b.ops = nil
	return nil
}
