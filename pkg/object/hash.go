package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// HashSize is the width of a Hash in bytes.
const HashSize = sha1.Size

// Hash is a 20-byte content identifier. The zero value is all zero bytes.
type Hash [HashSize]byte

// HashBytes computes the SHA-1 digest of data.
func HashBytes(data []byte) Hash {
	return Hash(sha1.Sum(data))
}

// HashFromBytes constructs a Hash from exactly HashSize raw bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("hash length %d, expected %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex constructs a Hash from a 40-character hex string.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("hash contains non-hex characters: %w", err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("hash length %d, expected %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// Bytes returns the raw digest bytes.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String returns the lowercase hex encoding.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Compare orders hashes bytewise, returning -1, 0, or 1.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}
