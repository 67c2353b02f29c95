// Package kvtable defines the narrow ordered key/value interface the
// spelling subsystem needs from its host database. Implementations live
// in pkg/kvtable/pebblekv (production, backed by Pebble) and
// pkg/kvtable/memtable (in-memory, for tests).
package kvtable

// Table is the host key/value store as seen by the spelling subsystem:
// point lookups, a batch for buffered writes, and an ordered cursor.
// Everything else the host database does (compaction, replication,
// WAL) is invisible here.
type Table interface {
	// GetExact returns the value stored under key, or ok=false if absent.
	GetExact(key []byte) (value []byte, ok bool, err error)

	// NewCursor returns a cursor for forward iteration in lexicographic
	// key order. Callers must Close it.
	NewCursor() Cursor

	// NewBatch returns a fresh write batch. Puts and Deletes staged on
	// it are invisible to GetExact/NewCursor until Commit.
	NewBatch() Batch
}

// Cursor iterates a Table's keys in ascending lexicographic order.
type Cursor interface {
	// SeekGE positions the cursor at the first key >= key and reports
	// whether such a key exists.
	SeekGE(key []byte) bool
	// Valid reports whether the cursor is positioned on an entry.
	Valid() bool
	// Next advances to the next key and reports whether it exists.
	Next() bool
	// Key returns the key at the cursor's current position. The
	// returned slice is only valid until the next cursor call.
	Key() []byte
	// Value returns the value at the cursor's current position. The
	// returned slice is only valid until the next cursor call.
	Value() []byte
	// Close releases resources held by the cursor.
	Close() error
}

// Batch is a buffered set of writes applied atomically by Commit, or
// discarded by Cancel. Neither call may be made more than once.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Commit() error
	Cancel() error
}
