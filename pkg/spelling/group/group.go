// Package group implements the prefix-group registry (spec §4.1):
// mapping an application-visible prefix string to a compact group id so
// spelling data for distinct fields coexists in one table.
package group

import (
	"fmt"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/keys"
	"spelld/pkg/spelling/serrors"
	"spelld/pkg/spelling/varint"
)

// Disabled is the sentinel group id meaning "spelling disabled for this
// prefix". It is never a valid allocated group id.
const Disabled uint32 = 0xFFFFFFFF

// Registry maps application prefixes to group ids, backed by a host
// table for reads and a batch for staged writes within one write
// session. Allocation is sequential and consistent within that batch.
type Registry struct {
	table kvtable.Table
	batch kvtable.Batch

	groupMax    uint32
	groupMaxSet bool

	// pending shadows S<prefix> entries written (or removed, via
	// disable) in this session, so later calls in the same session see
	// their own writes before commit.
	pending map[string]uint32
	removed map[string]bool
}

// New constructs a Registry over table, staging writes onto batch.
func New(table kvtable.Table, batch kvtable.Batch) *Registry {
	return &Registry{
		table:   table,
		batch:   batch,
		pending: make(map[string]uint32),
		removed: make(map[string]bool),
	}
}

func (r *Registry) loadGroupMax() (uint32, error) {
	if r.groupMaxSet {
		return r.groupMax, nil
	}
	v, ok, err := r.table.GetExact(keys.GroupMaxKey())
	if err != nil {
		return 0, fmt.Errorf("group: load GROUPMAX: %w", err)
	}
	if !ok {
		r.groupMax = 1 // group 0 is reserved for the empty prefix
		r.groupMaxSet = true
		return r.groupMax, nil
	}
	n, sz := varint.Decode(v)
	if sz <= 0 {
		return 0, fmt.Errorf("group: decode GROUPMAX: %w", serrors.ErrCorrupt)
	}
	r.groupMax = uint32(n)
	r.groupMaxSet = true
	return r.groupMax, nil
}

// Lookup returns the group id for prefix, or (Disabled, nil) if the
// prefix has no registered group. The empty prefix always resolves to
// group 0.
func (r *Registry) Lookup(prefix string) (uint32, error) {
	if prefix == "" {
		return 0, nil
	}
	if r.removed[prefix] {
		return Disabled, nil
	}
	if g, ok := r.pending[prefix]; ok {
		return g, nil
	}
	v, ok, err := r.table.GetExact(keys.PrefixRegistryKey(prefix))
	if err != nil {
		return 0, fmt.Errorf("group: lookup %q: %w", prefix, err)
	}
	if !ok {
		return Disabled, nil
	}
	n, sz := varint.Decode(v)
	if sz <= 0 {
		return 0, fmt.Errorf("group: decode group id for %q: %w", prefix, serrors.ErrCorrupt)
	}
	return uint32(n), nil
}

// Enable allocates (or aliases) a group id for prefix. If prefix is
// already enabled, its existing group id is returned unchanged. If
// aliasOf names a prefix that is itself enabled, prefix shares that
// group instead of getting a fresh one. The empty prefix is always
// group 0 and Enable is a no-op for it.
func (r *Registry) Enable(prefix, aliasOf string) (uint32, error) {
	if prefix == "" {
		return 0, nil
	}
	if existing, err := r.Lookup(prefix); err != nil {
		return 0, err
	} else if existing != Disabled {
		return existing, nil
	}

	group, err := r.groupFor(aliasOf)
	if err != nil {
		return 0, err
	}
	if group == Disabled {
		max, err := r.loadGroupMax()
		if err != nil {
			return 0, err
		}
		group = max
		r.groupMax = max + 1
		r.batch.Put(keys.GroupMaxKey(), varint.Encode(uint64(r.groupMax)))
	}

	r.pending[prefix] = group
	delete(r.removed, prefix)
	r.batch.Put(keys.PrefixRegistryKey(prefix), varint.Encode(uint64(group)))
	return group, nil
}

func (r *Registry) groupFor(aliasOf string) (uint32, error) {
	if aliasOf == "" {
		return Disabled, nil
	}
	return r.Lookup(aliasOf)
}

// Disable removes prefix's registry entry. Existing fragments, word
// frequencies, and FastSS ids for its group are left on disk untouched
// (see DESIGN.md open-question decisions) -- they simply become
// unreachable through the public API until the prefix, or an alias of
// it, is re-enabled.
func (r *Registry) Disable(prefix string) error {
	if prefix == "" {
		return nil
	}
	delete(r.pending, prefix)
	r.removed[prefix] = true
	r.batch.Delete(keys.PrefixRegistryKey(prefix))
	return nil
}

// Stats is a snapshot of GROUPMAX and every live prefix->group mapping.
type Stats struct {
	GroupMax uint32
	Prefixes map[string]uint32
}

// Snapshot returns the current registry state, including this
// session's uncommitted changes. Used by the inspect CLI.
func (r *Registry) Snapshot() (Stats, error) {
	max, err := r.loadGroupMax()
	if err != nil {
		return Stats{}, err
	}
	out := Stats{GroupMax: max, Prefixes: make(map[string]uint32)}

	cur := r.table.NewCursor()
	prefixByte := []byte{'S'}
	for ok := cur.SeekGE(prefixByte); ok; ok = cur.Next() {
		k := cur.Key()
		if len(k) == 0 || k[0] != 'S' {
			break
		}
		prefix := string(k[1:])
		v := cur.Value()
		n, sz := varint.Decode(v)
		if sz <= 0 {
			return Stats{}, fmt.Errorf("group: decode group id for %q: %w", prefix, serrors.ErrCorrupt)
		}
		out.Prefixes[prefix] = uint32(n)
	}
	if err := cur.Close(); err != nil {
		return Stats{}, err
	}
	for p := range r.removed {
		delete(out.Prefixes, p)
	}
	for p, g := range r.pending {
		out.Prefixes[p] = g
	}
	return out, nil
}
