package utils

import (
	"fmt"
	"math"

	humanize "github.com/dustin/go-humanize"
)

// Common allocation limits for counts that are read directly from
// attacker-controlled binary or JSON input and drive slice/string
// reservations before the bytes backing them have even been read.
const (
	// MaxFieldCount bounds fields_num / objects_num from the header.
	MaxFieldCount = 16_000_000

	// MaxDataSize bounds the data section read upfront by the decoder.
	MaxDataSize = 512 * 1024 * 1024 // 512MB

	// MaxStringLen is a ceiling for a single String/StringVector element
	// length. The binary decoders do not consult it: each string length is
	// bounded by its field's byte window within the data section instead.
	MaxStringLen = 64 * 1024 * 1024 // 64MB

	// MaxVectorLen bounds IntVector/StringVector element counts read from
	// binary input. FloatArray counts are derived from the field's byte
	// window and are not checked against it.
	MaxVectorLen = 64_000_000
)

// CheckMultiplyOverflow32 checks if multiplying two uint32 values would overflow.
func CheckMultiplyOverflow32(a, b uint32) error {
	if a == 0 || b == 0 {
		return nil // No overflow when either is zero.
	}
	if a > math.MaxUint32/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint32 max", a, b)
	}
	return nil
}

// SafeMultiply32 multiplies two uint32 values, failing on overflow rather
// than wrapping silently.
func SafeMultiply32(a, b uint32) (uint32, error) {
	if err := CheckMultiplyOverflow32(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// CheckAddOverflow32 checks if adding two uint32 values would overflow.
func CheckAddOverflow32(a, b uint32) error {
	if a > math.MaxUint32-b {
		return fmt.Errorf("addition overflow: %d + %d exceeds uint32 max", a, b)
	}
	return nil
}

// SafeAdd32 adds two uint32 values, failing on overflow rather than wrapping.
func SafeAdd32(a, b uint32) (uint32, error) {
	if err := CheckAddOverflow32(a, b); err != nil {
		return 0, err
	}
	return a + b, nil
}

// ValidateSize validates that a size read from input is within a hard
// ceiling before it is used to drive an allocation. description is folded
// into the error so call sites don't need to format the byte counts
// themselves.
func ValidateSize(size uint64, maxSize uint64, description string) error {
	if size > maxSize {
		return fmt.Errorf("%s: size %s exceeds maximum %s",
			description, humanize.Bytes(size), humanize.Bytes(maxSize))
	}
	return nil
}
