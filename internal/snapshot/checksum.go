package snapshot

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// Checksum is the deterministic 64-bit hash clients compare against on
// every turn submission (§4.E, §8 invariant 1): blake3 over the canonical
// binary encoding, truncated the same way rules.Catalog.Hash is.
func Checksum(s Snapshot) uint64 {
	sum := blake3.Sum256(Encode(s))
	return binary.LittleEndian.Uint64(sum[:8])
}
