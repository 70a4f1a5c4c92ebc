package common

import (
	"encoding/binary"
	"math"
)

// FitsWidth reports whether n can be stored as a signed integer of the
// given byte width without loss.
func FitsWidth(n int64, width int) bool {
	switch width {
	case 1:
		return n >= math.MinInt8 && n <= math.MaxInt8
	case 2:
		return n >= math.MinInt16 && n <= math.MaxInt16
	case 4:
		return n >= math.MinInt32 && n <= math.MaxInt32
	case 8:
		return true
	default:
		return false
	}
}

// AppendInt appends n to dst as a big-endian two's complement integer of
// width bytes. Widths other than 1, 2, 4 and 8 panic.
func AppendInt(dst []byte, n int64, width int) []byte {
	switch width {
	case 1:
		return append(dst, byte(int8(n)))
	case 2:
		return binary.BigEndian.AppendUint16(dst, uint16(int16(n)))
	case 4:
		return binary.BigEndian.AppendUint32(dst, uint32(int32(n)))
	case 8:
		return binary.BigEndian.AppendUint64(dst, uint64(n))
	default:
		panic("common: unsupported integer width")
	}
}

// ReadInt decodes a big-endian signed integer from the first width bytes
// of b. The caller guarantees len(b) >= width.
func ReadInt(b []byte, width int) int64 {
	switch width {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.BigEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.BigEndian.Uint32(b)))
	case 8:
		return int64(binary.BigEndian.Uint64(b))
	default:
		panic("common: unsupported integer width")
	}
}

// AppendFloat32 appends the IEEE-754 bits of f in network order.
func AppendFloat32(dst []byte, f float32) []byte {
	return binary.BigEndian.AppendUint32(dst, math.Float32bits(f))
}

// AppendFloat64 appends the IEEE-754 bits of f in network order.
func AppendFloat64(dst []byte, f float64) []byte {
	return binary.BigEndian.AppendUint64(dst, math.Float64bits(f))
}

// ReadFloat32 decodes a network-order float32 from the first 4 bytes of b.
func ReadFloat32(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

// ReadFloat64 decodes a network-order float64 from the first 8 bytes of b.
func ReadFloat64(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// AppendDecimal appends the base-10 ASCII form of n (no padding).
func AppendDecimal(dst []byte, n uint64) []byte {
	var scratch [20]byte
	i := len(scratch)
	for n >= 10 {
		i--
		scratch[i] = byte('0' + n%10)
		n /= 10
	}
	i--
	scratch[i] = byte('0' + n)
	return append(dst, scratch[i:]...)
}

// ParseDecimal parses an unsigned run of ASCII digits. It reports false
// when b is empty, holds a non-digit, or overflows limit.
func ParseDecimal(b []byte, limit uint64) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var n uint64
	for _, c := range b {
		if !IsDigit(c) {
			return 0, false
		}
		d := uint64(c - '0')
		if n > (limit-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}
