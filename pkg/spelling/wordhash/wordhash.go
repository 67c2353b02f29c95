// Package wordhash provides the process-stable 32-bit hash spec §3 uses
// to build WordPairKey. Grounded on cespare/xxhash, already pulled in
// transitively by Pebble (see go.mod) and used the same way by the
// pack's own badger-backed store for key hashing.
package wordhash

import "github.com/cespare/xxhash/v2"

// Hash32 returns a 32-bit hash of word: the low 32 bits of unseeded
// xxhash64, so the same word hashes to the same value in every process
// run and persisted pair keys stay addressable after a reopen.
func Hash32(word string) uint32 {
	return uint32(xxhash.Sum64String(word))
}
