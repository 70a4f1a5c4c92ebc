package rencode

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	twoTo64 := new(big.Int).Lsh(big.NewInt(1), 64)
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil is null", nil, Null{}, true},
		{"bools", Bool(true), Bool(true), true},
		{"bool mismatch", Bool(true), Bool(false), false},
		{"int and small bigint", Int(5), BigInt{big.NewInt(5)}, true},
		{"bigints", BigInt{twoTo64}, BigInt{new(big.Int).Set(twoTo64)}, true},
		{"int and large bigint", Int(5), BigInt{twoTo64}, false},
		{"int and float", Int(1), Float64(1), false},
		{"float32 vs float64", Float32(1), Float64(1), false},
		{"nan equals itself", Float64(math.NaN()), Float64(math.NaN()), true},
		{"signed zeros differ", Float64(0), Float64(math.Copysign(0, -1)), false},
		{"bytes", String("a"), Bytes("a"), true},
		{"empty bytes nil vs empty", Bytes(nil), Bytes{}, true},
		{"lists", List{Int(1), nil}, List{Int(1), Null{}}, true},
		{"list order matters", List{Int(1), Int(2)}, List{Int(2), Int(1)}, false},
		{"list length", List{Int(1)}, List{Int(1), Int(1)}, false},
		{
			"dict order ignored",
			Dict{{String("a"), Int(1)}, {String("b"), Int(2)}},
			Dict{{String("b"), Int(2)}, {String("a"), Int(1)}},
			true,
		},
		{
			"dict value differs",
			Dict{{String("a"), Int(1)}},
			Dict{{String("a"), Int(2)}},
			false,
		},
		{
			"dict duplicates are matched one to one",
			Dict{{String("a"), Int(1)}, {String("a"), Int(1)}},
			Dict{{String("a"), Int(1)}, {String("b"), Int(1)}},
			false,
		},
		{
			"dict duplicate keys in any order",
			Dict{{String("k"), Int(1)}, {String("k"), Int(2)}},
			Dict{{String("k"), Int(2)}, {String("k"), Int(1)}},
			true,
		},
		{
			"dict duplicate keys differ",
			Dict{{String("k"), Int(1)}, {String("k"), Int(2)}},
			Dict{{String("k"), Int(1)}, {String("k"), Int(1)}},
			false,
		},
		{"list vs dict", List{}, Dict{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Equal(tc.a, tc.b))
			assert.Equal(t, tc.want, Equal(tc.b, tc.a))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "dict", KindDict.String())
	assert.Equal(t, "int", BigInt{big.NewInt(1)}.Kind().String())
	assert.Equal(t, "invalid", Kind(200).String())
}

func TestNewBigInt(t *testing.T) {
	assert.Equal(t, Int(-7), NewBigInt(big.NewInt(-7)))
	x := new(big.Int).Lsh(big.NewInt(1), 70)
	v := NewBigInt(x)
	b, ok := v.(BigInt)
	assert.True(t, ok)
	assert.Zero(t, x.Cmp(b.Int))
}

func TestDictGet(t *testing.T) {
	d := Dict{
		{Key: Int(1), Value: String("one")},
		{Key: String("two"), Value: Int(2)},
	}
	v, ok := d.Get(BigInt{big.NewInt(1)})
	assert.True(t, ok)
	assert.Equal(t, String("one"), v)

	v, ok = d.Lookup("two")
	assert.True(t, ok)
	assert.Equal(t, Int(2), v)

	_, ok = d.Lookup("three")
	assert.False(t, ok)
}

func TestCodeName(t *testing.T) {
	names := map[byte]string{
		0: "INT_POS_FIXED", 43: "INT_POS_FIXED", 44: "FLOAT64", 45: "UNKNOWN",
		48: "DIGIT", 57: "DIGIT", 58: "UNKNOWN", 59: "LIST", 60: "DICT",
		61: "INT", 65: "INT8", 69: "NONE", 70: "INT_NEG_FIXED", 101: "INT_NEG_FIXED",
		102: "DICT_FIXED", 126: "DICT_FIXED", 127: "TERM", 128: "STR_FIXED",
		191: "STR_FIXED", 192: "LIST_FIXED", 255: "LIST_FIXED",
	}
	for c, want := range names {
		assert.Equal(t, want, CodeName(c), "code %d", c)
	}
}
