package rules

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// Hash returns the deterministic 64-bit rules_hash over the canonicalized
// definition stream (§3, §4.B). It gates replay import and client/server
// compatibility, so it must stay stable across platforms for identical
// Catalog contents — blake3 is used purely as a fast, stable digest, then
// truncated to the low 8 bytes as the FNV-like 64-bit value the spec calls
// for.
func (c *Catalog) Hash() uint64 {
	sum := blake3.Sum256(c.Canonicalize())
	return binary.LittleEndian.Uint64(sum[:8])
}
