// Package keys builds and parses the persisted key byte strings defined
// by spec §6.1. Centralizing them here keeps every other package from
// hand-rolling the prefix bytes.
package keys

import "encoding/binary"

const (
	groupMax = "GROUPMAX"
	indexMax = "INDEXMAX"
	indexStk = "INDEXSTACK"

	prefixS = 'S' // S<prefix> -> group id
	prefixW = 'W' // W<grp4LE><word> -> frequency; WS/WI share this lead byte
	prefixI = 'I' // I<fragment> -> FastSS/trigram posting list
)

// GroupMaxKey returns the reserved GROUPMAX counter key.
func GroupMaxKey() []byte { return []byte(groupMax) }

// IndexMaxKey returns the reserved FastSS allocator high-water-mark key.
func IndexMaxKey() []byte { return []byte(indexMax) }

// IndexStackKey returns the reserved FastSS allocator free-list key.
func IndexStackKey() []byte { return []byte(indexStk) }

// PrefixRegistryKey returns the S<prefix> key used by the prefix-group
// registry.
func PrefixRegistryKey(prefix string) []byte {
	out := make([]byte, 0, 1+len(prefix))
	out = append(out, prefixS)
	out = append(out, prefix...)
	return out
}

// Group4LE little-endian encodes a group id into 4 bytes, as used inside
// every PrefixedWord key.
func Group4LE(group uint32) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], group)
	return b
}

// PrefixedWord returns the concatenation of a 4-byte group id and the
// UTF-8 word bytes -- the unit of addressing for frequency records.
func PrefixedWord(group uint32, word string) []byte {
	g := Group4LE(group)
	out := make([]byte, 0, 4+len(word))
	out = append(out, g[:]...)
	out = append(out, word...)
	return out
}

// WordFreqKey returns the W<grp4LE><word> key under which a word's
// frequency count is stored.
func WordFreqKey(group uint32, word string) []byte {
	pw := PrefixedWord(group, word)
	out := make([]byte, 0, 1+len(pw))
	out = append(out, prefixW)
	out = append(out, pw...)
	return out
}

// WordPairKey returns the WS<grp4LE><packed-hash-pair> key. The caller
// must already have sorted lo <= hi (spec: canonical ordering by hash).
func WordPairKey(group uint32, lo, hi uint32) []byte {
	g := Group4LE(group)
	out := make([]byte, 0, 2+4+10+10)
	out = append(out, prefixW, 'S')
	out = append(out, g[:]...)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(lo))
	out = append(out, tmp[:n]...)
	n = binary.PutUvarint(tmp[:], uint64(hi))
	out = append(out, tmp[:n]...)
	return out
}

// WordIDKey returns the WI<id> key mapping a FastSS word-id to its word
// text. id is the 24-bit id; the mask bits are never part of this key.
func WordIDKey(id uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], id&0x00FFFFFF)
	out := make([]byte, 0, 2+4)
	out = append(out, prefixW, 'I')
	out = append(out, b[:]...)
	return out
}

// RawWordKey returns the bare word bytes used as the reverse (word ->
// id) mapping key, living in a key space disjoint from the reserved
// W/WI/I/S prefixes by construction of the prefix bytes themselves.
func RawWordKey(word string) []byte { return []byte(word) }

// FragmentKey returns the I<fragment> posting-list key shared by the
// FastSS deletion-prefix index and reused, by convention, for any
// engine that indexes by opaque fragment bytes.
func FragmentKey(fragment []byte) []byte {
	out := make([]byte, 0, 1+len(fragment))
	out = append(out, prefixI)
	out = append(out, fragment...)
	return out
}

// TrigramKey returns the <pos><trigram-utf8> key for the trigram
// engine: one position byte followed by the UTF-8 bytes of exactly
// three code points (placeholders included).
func TrigramKey(pos byte, fragment string) []byte {
	out := make([]byte, 0, 1+len(fragment))
	out = append(out, pos)
	out = append(out, fragment...)
	return out
}
