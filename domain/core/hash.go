package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns the first 12 hex digits, for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Fingerprint is the hash of an exported dataset's bytes. Two runs with the
// same seed and size must produce equal fingerprints.
type Fingerprint Hash

// NewFingerprint hashes exported bytes
func NewFingerprint(data []byte) Fingerprint { return Fingerprint(NewHash(data)) }

func (f Fingerprint) String() string { return Hash(f).String() }
func (f Fingerprint) Short() string  { return Hash(f).Short() }
