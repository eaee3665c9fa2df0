package compiler

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashLength is the number of hex characters in a truncated hash.
// Hashes are truncated to 8 hex chars (32 bits) for compact storage.
const HashLength = 8

// ComputeFileHash computes a content hash used for up-to-date
// detection between builds.
func ComputeFileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:HashLength]
}
