// Package wire reads and writes fixed-width little-endian values and
// single bits at absolute offsets. Callers check bounds first.
package wire

import (
	"encoding/binary"
	"math"
)

func PutUint8(b []byte, off uint64, v uint8) { b[off] = v }

func PutUint16(b []byte, off uint64, v uint16) {
	binary.LittleEndian.PutUint16(b[off:], v)
}

func PutUint32(b []byte, off uint64, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

func PutUint64(b []byte, off uint64, v uint64) {
	binary.LittleEndian.PutUint64(b[off:], v)
}

func PutInt8(b []byte, off uint64, v int8) { PutUint8(b, off, uint8(v)) }
func PutInt16(b []byte, off uint64, v int16) { PutUint16(b, off, uint16(v)) }
func PutInt32(b []byte, off uint64, v int32) { PutUint32(b, off, uint32(v)) }
func PutInt64(b []byte, off uint64, v int64) { PutUint64(b, off, uint64(v)) }

// Floats are written bit for bit. NaN payloads are preserved.
func PutFloat32(b []byte, off uint64, v float32) {
	PutUint32(b, off, math.Float32bits(v))
}

func PutFloat64(b []byte, off uint64, v float64) {
	PutUint64(b, off, math.Float64bits(v))
}

// PutBit sets or clears bit n (LSB first) of the byte at off.
func PutBit(b []byte, off uint64, n uint8, v bool) {
	if v {
		b[off] |= 1 << n
	} else {
		b[off] &^= 1 << n
	}
}

func Uint8(b []byte, off uint64) uint8 { return b[off] }

func Uint16(b []byte, off uint64) uint16 {
	return binary.LittleEndian.Uint16(b[off:])
}

func Uint32(b []byte, off uint64) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

func Uint64(b []byte, off uint64) uint64 {
	return binary.LittleEndian.Uint64(b[off:])
}

func Int8(b []byte, off uint64) int8 { return int8(b[off]) }
func Int16(b []byte, off uint64) int16 { return int16(Uint16(b, off)) }
func Int32(b []byte, off uint64) int32 { return int32(Uint32(b, off)) }
func Int64(b []byte, off uint64) int64 { return int64(Uint64(b, off)) }

func Float32(b []byte, off uint64) float32 {
	return math.Float32frombits(Uint32(b, off))
}

func Float64(b []byte, off uint64) float64 {
	return math.Float64frombits(Uint64(b, off))
}

// Bit reports bit n (LSB first) of the byte at off.
func Bit(b []byte, off uint64, n uint8) bool {
	return b[off]&(1<<n) != 0
}
