// Package varint packs and unpacks the variable-length unsigned
// integers used throughout the persisted key space (spec §6.1: group
// ids, frequencies, pair-key components). Grounded on the pack's own
// use of encoding/binary.PutUvarint/Uvarint for exactly this purpose
// (other_examples wordlist.go); no third-party varint codec exists in
// the corpus and the stdlib implementation is the one every reader of
// this code already knows.
package varint

import "encoding/binary"

// Append encodes v as a varuint and appends it to buf.
func Append(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// Encode returns v as a standalone varuint-encoded byte slice.
func Encode(v uint64) []byte {
	return Append(nil, v)
}

// Decode reads a varuint from the front of buf, returning the value and
// the number of bytes consumed. n == 0 means buf is too short (a
// truncated encoding) and n < 0 means the value overflows 64 bits;
// callers treat n <= 0 as corruption.
func Decode(buf []byte) (v uint64, n int) {
	return binary.Uvarint(buf)
}
