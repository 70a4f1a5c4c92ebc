package rencode

import (
	"bytes"
	"math"
	"math/big"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat32
	KindFloat64
	KindBytes
	KindList
	KindDict
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindBytes:   "bytes",
	KindList:    "list",
	KindDict:    "dict",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Value is one node of a rencode value tree. The set of implementations
// is closed: Null, Bool, Int, BigInt, Float32, Float64, Bytes, List and
// Dict. A nil Value is treated as Null everywhere.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the null literal.
type Null struct{}

// Bool is a boolean literal.
type Bool bool

// Int is an integer within the signed 64-bit range.
type Int int64

// BigInt is an integer outside the signed 64-bit range. It travels as a
// decimal string of at most 64 characters. A BigInt whose value fits in
// an int64 encodes exactly like the equivalent Int.
type BigInt struct {
	*big.Int
}

// Float32 is an IEEE-754 single precision float.
type Float32 float32

// Float64 is an IEEE-754 double precision float.
type Float64 float64

// Bytes is a raw byte string. Text is carried as its UTF-8 bytes.
type Bytes []byte

// List is an ordered, heterogeneous sequence of values.
type List []Value

// Pair is one key/value entry of a Dict.
type Pair struct {
	Key   Value
	Value Value
}

// Dict maps values to values. Pair order carries no meaning; the encoder
// writes pairs in slice order and the decoder preserves wire order.
type Dict []Pair

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Int) Kind() Kind     { return KindInt }
func (BigInt) Kind() Kind  { return KindInt }
func (Float32) Kind() Kind { return KindFloat32 }
func (Float64) Kind() Kind { return KindFloat64 }
func (Bytes) Kind() Kind   { return KindBytes }
func (List) Kind() Kind    { return KindList }
func (Dict) Kind() Kind    { return KindDict }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Int) isValue()     {}
func (BigInt) isValue()  {}
func (Float32) isValue() {}
func (Float64) isValue() {}
func (Bytes) isValue()   {}
func (List) isValue()    {}
func (Dict) isValue()    {}

// String returns a Bytes holding the UTF-8 bytes of s.
func String(s string) Bytes {
	return Bytes(s)
}

// String returns the bytes as a Go string.
func (b Bytes) String() string {
	return string(b)
}

// Get returns the value stored under key, comparing keys with Equal.
func (d Dict) Get(key Value) (Value, bool) {
	for _, p := range d {
		if Equal(p.Key, key) {
			return p.Value, true
		}
	}
	return nil, false
}

// Lookup is Get for text keys.
func (d Dict) Lookup(key string) (Value, bool) {
	return d.Get(String(key))
}

// NewBigInt wraps x. Values that fit in an int64 come back as Int so
// that callers comparing variants see the canonical form.
func NewBigInt(x *big.Int) Value {
	if x != nil && x.IsInt64() {
		return Int(x.Int64())
	}
	return BigInt{x}
}

// Equal reports whether a and b are structurally equal. Integers compare
// by value across Int and BigInt, floats by bit pattern, and dicts
// without regard to pair order.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int, BigInt:
		return equalInt(a, b)
	case Float32:
		y, ok := b.(Float32)
		return ok && math.Float32bits(float32(x)) == math.Float32bits(float32(y))
	case Float64:
		y, ok := b.(Float64)
		return ok && math.Float64bits(float64(x)) == math.Float64bits(float64(y))
	case Bytes:
		y, ok := b.(Bytes)
		return ok && bytes.Equal(x, y)
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Dict:
		y, ok := b.(Dict)
		if !ok || len(x) != len(y) {
			return false
		}
		return equalDict(x, y)
	}
	return false
}

func equalInt(a, b Value) bool {
	if x, ok := a.(Int); ok {
		if y, ok := b.(Int); ok {
			return x == y
		}
	}
	x, ok := bigOf(a)
	if !ok {
		return false
	}
	y, ok := bigOf(b)
	if !ok {
		return false
	}
	return x.Cmp(y) == 0
}

func bigOf(v Value) (*big.Int, bool) {
	switch n := v.(type) {
	case Int:
		return big.NewInt(int64(n)), true
	case BigInt:
		if n.Int == nil {
			return nil, false
		}
		return n.Int, true
	}
	return nil, false
}

// equalDict matches every pair of x against a distinct equal pair of y.
// Pair equality is an equivalence, so first-fit matching is exact even
// when keys repeat.
func equalDict(x, y Dict) bool {
	used := make([]bool, len(y))
outer:
	for _, p := range x {
		for j, q := range y {
			if used[j] || !Equal(p.Key, q.Key) || !Equal(p.Value, q.Value) {
				continue
			}
			used[j] = true
			continue outer
		}
		return false
	}
	return true
}
