// Package fastss implements the FastSS deletion-neighborhood index
// (spec §4.5): encoding a word into the subset of its deletion
// variants, storing them under a short prefix key, and merging
// sessions of adds/removes into the posting lists on flush.
package fastss

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"sort"

	"spelld/pkg/kvtable"
	"spelld/pkg/spelling/keys"
	"spelld/pkg/spelling/ortree"
	"spelld/pkg/spelling/serrors"
)

const (
	// Limit is the width of the deletion mask in bits. Spec §9 treats
	// this as a hard invariant: posting-list packing assumes a 24-bit
	// id plus an 8-bit mask, so widening Limit needs a format version
	// bump, not a config knob.
	Limit = 8

	// MaxDistance is the largest number of simultaneous deletions ever
	// indexed or queried.
	MaxDistance = 2

	// PrefixLength is how many leading code points of a deletion
	// variant select its posting-list key.
	PrefixLength = 4
)

// Engine is the FastSS deletion-neighborhood index.
type Engine struct {
	table kvtable.Table
	alloc *allocator

	adds    map[string]bool
	removes map[string]bool
}

func New(table kvtable.Table) *Engine {
	return &Engine{
		table:   table,
		alloc:   newAllocator(table),
		adds:    make(map[string]bool),
		removes: make(map[string]bool),
	}
}

// ToggleWord stages word for addition (on) or removal (!on) at the
// next MergeFragmentChanges.
func (e *Engine) ToggleWord(word string, on bool) {
	if on {
		delete(e.removes, word)
		e.adds[word] = true
	} else {
		delete(e.adds, word)
		e.removes[word] = true
	}
}

// Cancel discards all pending adds/removes and allocator state.
func (e *Engine) Cancel() {
	e.adds = make(map[string]bool)
	e.removes = make(map[string]bool)
	e.alloc.Cancel()
}

// Pending reports the number of words with a buffered but uncommitted
// add/remove, for metrics.FragmentsPending.
func (e *Engine) Pending() int { return len(e.adds) + len(e.removes) }

// variantPositions bounds the positions and popcount considered for a
// word of the given rune length, per spec §4.5: at most Limit
// positions count for masking, and masks are capped at
// min(MaxDistance, len/2) bits.
func variantPositions(runeLen, extraCap int) (nPositions, maxDist int) {
	nPositions = runeLen
	if nPositions > Limit {
		nPositions = Limit
	}
	maxDist = runeLen / 2
	if maxDist > MaxDistance {
		maxDist = MaxDistance
	}
	if extraCap >= 0 && extraCap < maxDist {
		maxDist = extraCap
	}
	return nPositions, maxDist
}

func generateMasks(nPositions, maxDist int) []uint8 {
	if nPositions == 0 {
		return []uint8{0}
	}
	total := 1 << uint(nPositions)
	masks := make([]uint8, 0, total)
	for m := 0; m < total; m++ {
		if bits.OnesCount(uint(m)) <= maxDist {
			masks = append(masks, uint8(m))
		}
	}
	return masks
}

// EffectiveVariant applies mask to word, skipping runes at positions
// < Limit whose bit is set. Characters beyond Limit are never deleted.
func EffectiveVariant(word string, mask uint8) string {
	runes := []rune(word)
	out := make([]rune, 0, len(runes))
	for i, r := range runes {
		if i < Limit && mask&(1<<uint(i)) != 0 {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func postingKey(variant string) []byte {
	runes := []rune(variant)
	if len(runes) > PrefixLength {
		runes = runes[:PrefixLength]
	}
	return keys.FragmentKey([]byte(string(runes)))
}

type packedEntry uint32

func pack(id uint32, mask uint8) packedEntry {
	return packedEntry((id & 0x00FFFFFF) | uint32(mask)<<24)
}

func (p packedEntry) id() uint32  { return uint32(p) & 0x00FFFFFF }
func (p packedEntry) mask() uint8 { return uint8(uint32(p) >> 24) }

func decodeEntries(buf []byte) ([]packedEntry, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("fastss: posting size %d not a multiple of 4: %w", len(buf), serrors.ErrCorrupt)
	}
	out := make([]packedEntry, len(buf)/4)
	for i := range out {
		out[i] = packedEntry(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}

func encodeEntries(entries []packedEntry) []byte {
	out := make([]byte, 4*len(entries))
	for i, e := range entries {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(e))
	}
	return out
}

func (e *Engine) resolveWord(id uint32) (string, error) {
	v, ok, err := e.table.GetExact(keys.WordIDKey(id))
	if err != nil {
		return "", fmt.Errorf("fastss: load id %d: %w", id, err)
	}
	if !ok {
		return "", fmt.Errorf("fastss: id %d has no word mapping: %w", id, serrors.ErrCorrupt)
	}
	return string(v), nil
}

// MergeFragmentChanges realizes pending adds/removes into batch: freed
// ids are pushed to the allocator free-list and their forward/reverse
// mappings deleted; new ids are allocated and mapped; every affected
// posting-list key is reloaded, filtered of removed ids, merged with
// the new sorted delta, and re-serialized. Calling it twice with no
// intervening ToggleWord is a no-op.
func (e *Engine) MergeFragmentChanges(batch kvtable.Batch) error {
	removedWords := sortedKeys(e.removes)
	addedWords := sortedKeys(e.adds)

	removeSet := make(map[uint32]bool, len(removedWords))
	deltaByKey := make(map[string][]packedEntry)
	for _, w := range removedWords {
		v, ok, err := e.table.GetExact(keys.RawWordKey(w))
		if err != nil {
			return fmt.Errorf("fastss: load id for %q: %w", w, err)
		}
		if !ok || len(v) != 4 {
			return fmt.Errorf("fastss: remove %q has no id mapping: %w", w, serrors.ErrCorrupt)
		}
		id := binary.LittleEndian.Uint32(v)
		removeSet[id] = true
		batch.Delete(keys.WordIDKey(id))
		batch.Delete(keys.RawWordKey(w))
		if err := e.alloc.Free(id); err != nil {
			return err
		}
		// Every posting list holding the removed word is an affected key,
		// so its entries for id are filtered out below.
		nPositions, maxDist := variantPositions(len([]rune(w)), -1)
		for _, mask := range generateMasks(nPositions, maxDist) {
			k := string(postingKey(EffectiveVariant(w, mask)))
			if _, ok := deltaByKey[k]; !ok {
				deltaByKey[k] = nil
			}
		}
	}

	newWordByID := make(map[uint32]string, len(addedWords))
	for _, w := range addedWords {
		id, err := e.alloc.Allocate()
		if err != nil {
			return err
		}
		newWordByID[id] = w
		var idBytes [4]byte
		binary.LittleEndian.PutUint32(idBytes[:], id)
		batch.Put(keys.WordIDKey(id), []byte(w))
		batch.Put(keys.RawWordKey(w), idBytes[:])

		runes := []rune(w)
		nPositions, maxDist := variantPositions(len(runes), -1)
		for _, mask := range generateMasks(nPositions, maxDist) {
			variant := EffectiveVariant(w, mask)
			k := string(postingKey(variant))
			deltaByKey[k] = append(deltaByKey[k], pack(id, mask))
		}
	}

	// resolve looks up a word added this session before falling back to
	// the persisted table, since new ids are only staged in batch and
	// are not yet visible through GetExact.
	resolve := func(id uint32) (string, error) {
		if w, ok := newWordByID[id]; ok {
			return w, nil
		}
		return e.resolveWord(id)
	}

	affectedKeys := make([]string, 0, len(deltaByKey))
	for k := range deltaByKey {
		affectedKeys = append(affectedKeys, k)
	}
	sort.Strings(affectedKeys)

	for _, k := range affectedKeys {
		existingRaw, ok, err := e.table.GetExact([]byte(k))
		if err != nil {
			return fmt.Errorf("fastss: load posting %x: %w", []byte(k), err)
		}
		var existing []packedEntry
		if ok {
			existing, err = decodeEntries(existingRaw)
			if err != nil {
				return err
			}
		}
		kept := existing[:0:0]
		for _, p := range existing {
			if removeSet[p.id()] {
				continue
			}
			kept = append(kept, p)
		}

		delta := deltaByKey[k]
		sort.SliceStable(delta, func(i, j int) bool {
			vi := EffectiveVariant(newWordByID[delta[i].id()], delta[i].mask())
			vj := EffectiveVariant(newWordByID[delta[j].id()], delta[j].mask())
			if vi != vj {
				return vi < vj
			}
			return delta[i] < delta[j]
		})

		merged, err := mergeSorted(kept, delta, resolve)
		if err != nil {
			return err
		}
		if len(merged) == 0 {
			batch.Delete([]byte(k))
			continue
		}
		batch.Put([]byte(k), encodeEntries(merged))
	}

	e.alloc.Flush(batch)
	e.adds = make(map[string]bool)
	e.removes = make(map[string]bool)
	return nil
}

// mergeSorted stably merges two already-sorted (by effective variant)
// slices using the data-based comparator: each id resolves to its word
// via resolveWord. The caller filters removed ids out of `kept`, and its
// resolveWord maps ids allocated in this batch (including a freed id
// reused by a new word) to the new word before consulting the table.
func mergeSorted(a, b []packedEntry, resolveWord func(uint32) (string, error)) ([]packedEntry, error) {
	out := make([]packedEntry, 0, len(a)+len(b))
	i, j := 0, 0
	variantCache := make(map[packedEntry]string, len(a)+len(b))
	variantOf := func(p packedEntry) (string, error) {
		if v, ok := variantCache[p]; ok {
			return v, nil
		}
		w, err := resolveWord(p.id())
		if err != nil {
			return "", err
		}
		v := EffectiveVariant(w, p.mask())
		variantCache[p] = v
		return v, nil
	}
	for i < len(a) && j < len(b) {
		va, err := variantOf(a[i])
		if err != nil {
			return nil, err
		}
		vb, err := variantOf(b[j])
		if err != nil {
			return nil, err
		}
		if va < vb || (va == vb && a[i] <= b[j]) {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OpenCandidates enumerates every (query, mask) deletion variant with
// popcount <= min(maxEdits, MaxDistance, |query|/2), loads each
// variant's posting list, binary-searches the entries whose effective
// variant equals the query's, and unions the resulting word set.
func (e *Engine) OpenCandidates(query string, maxEdits int) (ortree.Iterator, error) {
	runes := []rune(query)
	nPositions, maxDist := variantPositions(len(runes), maxEdits)

	ids := make(map[uint32]bool)
	for _, mask := range generateMasks(nPositions, maxDist) {
		target := EffectiveVariant(query, mask)
		raw, ok, err := e.table.GetExact(postingKey(target))
		if err != nil {
			return nil, fmt.Errorf("fastss: load posting for %q: %w", query, err)
		}
		if !ok {
			continue
		}
		entries, err := decodeEntries(raw)
		if err != nil {
			return nil, err
		}

		var resolveErr error
		variantAt := func(i int) string {
			w, err := e.resolveWord(entries[i].id())
			if err != nil {
				resolveErr = err
				return ""
			}
			return EffectiveVariant(w, entries[i].mask())
		}
		lo := sort.Search(len(entries), func(i int) bool { return variantAt(i) >= target })
		if resolveErr != nil {
			return nil, resolveErr
		}
		hi := sort.Search(len(entries), func(i int) bool { return variantAt(i) > target })
		if resolveErr != nil {
			return nil, resolveErr
		}
		for _, p := range entries[lo:hi] {
			ids[p.id()] = true
		}
	}

	words := make([]string, 0, len(ids))
	for id := range ids {
		w, err := e.resolveWord(id)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	sort.Strings(words)
	return ortree.NewSliceIterator(words), nil
}

// Stats exposes allocator state for the inspect CLI.
func (e *Engine) Stats() (max uint32, freeDepth int, err error) {
	return e.alloc.Snapshot()
}
