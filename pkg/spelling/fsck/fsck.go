// Package fsck runs a read-only consistency sweep over a spelling
// index's FastSS id<->posting references, the class of defect spec.md
// §7 calls out explicitly ("word-id referenced by a posting list but
// missing from the id->word map"). It mutates nothing.
package fsck

import (
	"fmt"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/keys"
	"spelld/pkg/spelling/metrics"
)

// Issue describes one inconsistency found during a sweep.
type Issue struct {
	Kind   string // "orphan_id", "dangling_posting", "malformed_posting"
	Detail string
}

// Report is the outcome of a Run.
type Report struct {
	IDsScanned      int
	PostingsScanned int
	Issues          []Issue
}

// Run walks every `WI<id>` entry and every `I<fragment>` posting list
// in table, confirming each id referenced by a posting list has a
// forward `WI<id>` mapping, and that every `WI<id>` mapping is
// referenced by at least one posting list. It never writes. Only the
// FastSS engine produces `WI`/`I` entries; running it against a
// trigram-only database is a harmless no-op.
func Run(table kvtable.Table) (Report, error) {
	var rep Report

	idsWithMapping := make(map[uint32]bool)
	cur := table.NewCursor()
	prefix := []byte{'W', 'I'}
	for ok := cur.SeekGE(prefix); ok; ok = cur.Next() {
		k := cur.Key()
		if len(k) < 2 || k[0] != 'W' || k[1] != 'I' {
			break
		}
		id, ok := decodeWordIDKey(k)
		if !ok {
			continue
		}
		idsWithMapping[id] = true
		rep.IDsScanned++
	}
	if err := cur.Close(); err != nil {
		return rep, fmt.Errorf("fsck: close id cursor: %w", err)
	}

	indexMaxKey := string(keys.IndexMaxKey())
	indexStackKey := string(keys.IndexStackKey())

	referenced := make(map[uint32]bool)
	cur = table.NewCursor()
	fragPrefix := []byte{'I'}
	for ok := cur.SeekGE(fragPrefix); ok; ok = cur.Next() {
		k := cur.Key()
		if len(k) == 0 || k[0] != 'I' {
			break
		}
		if ks := string(k); ks == indexMaxKey || ks == indexStackKey {
			continue
		}
		v := cur.Value()
		if len(v)%4 != 0 {
			metrics.CorruptPostings.Inc()
			rep.Issues = append(rep.Issues, Issue{
				Kind:   "malformed_posting",
				Detail: fmt.Sprintf("key %x: size %d not a multiple of 4", k, len(v)),
			})
			continue
		}
		rep.PostingsScanned++
		for i := 0; i+4 <= len(v); i += 4 {
			id := leUint32(v[i:i+4]) & 0x00FFFFFF
			referenced[id] = true
			if !idsWithMapping[id] {
				metrics.CorruptPostings.Inc()
				rep.Issues = append(rep.Issues, Issue{
					Kind:   "dangling_posting",
					Detail: fmt.Sprintf("posting %x references id %d with no WI mapping", k, id),
				})
			}
		}
	}
	if err := cur.Close(); err != nil {
		return rep, fmt.Errorf("fsck: close posting cursor: %w", err)
	}

	for id := range idsWithMapping {
		if !referenced[id] {
			rep.Issues = append(rep.Issues, Issue{
				Kind:   "orphan_id",
				Detail: fmt.Sprintf("id %d has a WI mapping but no posting references it", id),
			})
		}
	}

	return rep, nil
}

func decodeWordIDKey(k []byte) (uint32, bool) {
	want := keys.WordIDKey(0)
	if len(k) != len(want) {
		return 0, false
	}
	return leUint32(k[2:6]), true
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
