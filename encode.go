package rencode

import (
	"fmt"
	"math/big"

	"github.com/rawbytedev/rencode/internal/common"
)

// Encoder encodes values into a buffer it reuses across calls.
// The slice returned by Encode is only valid until the next call.
// An Encoder is not safe for concurrent use.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with a small preallocated buffer.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 64)}
}

// Reset drops the encoded bytes but keeps the buffer capacity.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Encode returns the canonical encoding of v.
func (e *Encoder) Encode(v Value) ([]byte, error) {
	e.Reset()
	out, err := appendValue(e.buf, v)
	if err != nil {
		return nil, err
	}
	e.buf = out
	return e.buf, nil
}

// Encode returns the canonical encoding of v in a fresh slice.
func Encode(v Value) ([]byte, error) {
	return appendValue(nil, v)
}

// Append appends the canonical encoding of v to dst. On error dst is
// returned unchanged.
func Append(dst []byte, v Value) ([]byte, error) {
	out, err := appendValue(dst, v)
	if err != nil {
		return dst, err
	}
	return out, nil
}

// EncodeToString is Encode with the result as a string.
func EncodeToString(v Value) (string, error) {
	b, err := Encode(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func appendValue(buf []byte, v Value) ([]byte, error) {
	switch x := v.(type) {
	case nil, Null:
		return append(buf, chrNone), nil
	case Bool:
		if x {
			return append(buf, chrTrue), nil
		}
		return append(buf, chrFalse), nil
	case Int:
		return appendInt(buf, int64(x)), nil
	case BigInt:
		if x.Int == nil {
			return buf, fmt.Errorf("%w: nil BigInt", ErrUnsupportedType)
		}
		return appendBigInt(buf, x.Int)
	case Float32:
		buf = append(buf, chrFloat32)
		return common.AppendFloat32(buf, float32(x)), nil
	case Float64:
		buf = append(buf, chrFloat64)
		return common.AppendFloat64(buf, float64(x)), nil
	case Bytes:
		return appendBytes(buf, x), nil
	case List:
		return appendList(buf, x)
	case Dict:
		return appendDict(buf, x)
	default:
		return buf, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// appendInt picks the smallest representation that holds n exactly.
func appendInt(buf []byte, n int64) []byte {
	switch {
	case n >= 0 && n < intPosFixedCount:
		return append(buf, byte(intPosFixedStart+n))
	case n < 0 && n >= -intNegFixedCount:
		return append(buf, byte(intNegFixedStart-1-n))
	case common.FitsWidth(n, 1):
		buf = append(buf, chrInt1)
		return common.AppendInt(buf, n, 1)
	case common.FitsWidth(n, 2):
		buf = append(buf, chrInt2)
		return common.AppendInt(buf, n, 2)
	case common.FitsWidth(n, 4):
		buf = append(buf, chrInt4)
		return common.AppendInt(buf, n, 4)
	default:
		buf = append(buf, chrInt8)
		return common.AppendInt(buf, n, 8)
	}
}

func appendBigInt(buf []byte, n *big.Int) ([]byte, error) {
	if n.IsInt64() {
		return appendInt(buf, n.Int64()), nil
	}
	s := n.String()
	if len(s) > maxIntLength {
		return buf, fmt.Errorf("%w: %d digits", ErrRange, len(s))
	}
	buf = append(buf, chrInt)
	buf = append(buf, s...)
	return append(buf, chrTerm), nil
}

func appendBytes(buf []byte, b []byte) []byte {
	if len(b) < strFixedCount {
		buf = append(buf, byte(strFixedStart+len(b)))
	} else {
		buf = common.AppendDecimal(buf, uint64(len(b)))
		buf = append(buf, strLengthSep)
	}
	return append(buf, b...)
}

func appendList(buf []byte, l List) ([]byte, error) {
	fixed := len(l) < listFixedCount
	if fixed {
		buf = append(buf, byte(listFixedStart+len(l)))
	} else {
		buf = append(buf, chrList)
	}
	var err error
	for _, elem := range l {
		if buf, err = appendValue(buf, elem); err != nil {
			return buf, err
		}
	}
	if !fixed {
		buf = append(buf, chrTerm)
	}
	return buf, nil
}

func appendDict(buf []byte, d Dict) ([]byte, error) {
	fixed := len(d) < dictFixedCount
	if fixed {
		buf = append(buf, byte(dictFixedStart+len(d)))
	} else {
		buf = append(buf, chrDict)
	}
	var err error
	for _, p := range d {
		if buf, err = appendValue(buf, p.Key); err != nil {
			return buf, err
		}
		if buf, err = appendValue(buf, p.Value); err != nil {
			return buf, err
		}
	}
	if !fixed {
		buf = append(buf, chrTerm)
	}
	return buf, nil
}
