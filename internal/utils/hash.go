// Package utils provides small, dependency-free helpers shared by the
// binary and JSON halves of the save codec: name hashing, string escaping,
// checked arithmetic, and pooled decode buffers.
package utils

// NameHash computes the save format's deterministic 32-bit field-name hash:
// a left fold over the name bytes (excluding any terminating NUL) with
// wraparound 32-bit arithmetic, acc = acc*53 + b.
func NameHash(name []byte) int32 {
	var acc int32
	for _, b := range name {
		acc = acc*53 + int32(b)
	}
	return acc
}
