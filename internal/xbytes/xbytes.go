// Package xbytes decodes raw firmware property values.
package xbytes

import "encoding/binary"

// Uint64Size is the only property size accepted as a 64-bit value.
const Uint64Size = 8

// Uint64 decodes an 8-byte little-endian value (the EFI layout).
// ok is false for any other size.
func Uint64(b []byte) (v uint64, ok bool) {
	if len(b) != Uint64Size {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

// PutUint64 encodes v the way Uint64 decodes it.
func PutUint64(v uint64) []byte {
	b := make([]byte, Uint64Size)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// Swap64 reverses an 8-byte value in place, converting a big-endian
// property (flattened device tree) to the little-endian layout.
// Other sizes are left untouched.
func Swap64(b []byte) []byte {
	if len(b) != Uint64Size {
		return b
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
