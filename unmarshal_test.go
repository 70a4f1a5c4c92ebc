package rencode

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterface(t *testing.T) {
	twoTo64 := new(big.Int).Lsh(big.NewInt(1), 64)
	assert.Nil(t, Interface(Null{}))
	assert.Nil(t, Interface(nil))
	assert.Equal(t, true, Interface(Bool(true)))
	assert.Equal(t, int64(-3), Interface(Int(-3)))
	assert.Equal(t, twoTo64, Interface(BigInt{twoTo64}))
	assert.Equal(t, float32(1.5), Interface(Float32(1.5)))
	assert.Equal(t, 1.5, Interface(Float64(1.5)))
	assert.Equal(t, "abc", Interface(String("abc")))
	assert.Equal(t, []byte{0xFF}, Interface(Bytes{0xFF}))
	assert.Equal(t, []any{int64(1), "x", nil}, Interface(List{Int(1), String("x"), Null{}}))

	assert.Equal(t,
		map[string]any{"a": int64(1), "b": []any{}},
		Interface(Dict{{String("a"), Int(1)}, {String("b"), List{}}}))

	assert.Equal(t,
		map[any]any{int64(1): "one", "[2]": true, "two": nil},
		Interface(Dict{
			{Int(1), String("one")},
			{List{Int(2)}, Bool(true)},
			{String("two"), Null{}},
		}))
}

func TestUnmarshalStruct(t *testing.T) {
	in := loginRequest{ID: 42, Method: "daemon.info", Args: []string{"a"}, Token: []byte{1, 2}, Extra: List{Int(1)}}
	data, err := Marshal(in)
	require.NoError(t, err)

	var out loginRequest
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, 42, out.ID)
	assert.Equal(t, "daemon.info", out.Method)
	assert.Equal(t, []string{"a"}, out.Args)
	assert.Equal(t, []byte{1, 2}, out.Token)
	assert.True(t, Equal(List{Int(1)}, out.Extra))
	assert.Empty(t, out.Internal)
}

func TestUnmarshalIgnoresUnknownKeys(t *testing.T) {
	v := Dict{
		{String("method"), String("m")},
		{String("nope"), Int(1)},
		{Int(5), Int(6)},
	}
	var out loginRequest
	require.NoError(t, Convert(v, &out))
	assert.Equal(t, "m", out.Method)
}

func TestConvertIntegers(t *testing.T) {
	var i8 int8
	require.NoError(t, Convert(Int(-128), &i8))
	assert.Equal(t, int8(-128), i8)
	require.ErrorIs(t, Convert(Int(128), &i8), ErrTypeMismatch)

	var u8 uint8
	require.ErrorIs(t, Convert(Int(-1), &u8), ErrTypeMismatch)
	require.ErrorIs(t, Convert(Int(256), &u8), ErrTypeMismatch)

	var u64 uint64
	top := new(big.Int).SetUint64(math.MaxUint64)
	require.NoError(t, Convert(BigInt{top}, &u64))
	assert.Equal(t, uint64(math.MaxUint64), u64)

	var i64 int64
	require.ErrorIs(t, Convert(BigInt{top}, &i64), ErrTypeMismatch)

	var f float64
	require.NoError(t, Convert(Int(3), &f))
	assert.Equal(t, 3.0, f)

	var b big.Int
	require.NoError(t, Convert(Int(-9), &b))
	assert.Equal(t, "-9", b.String())
}

func TestConvertContainers(t *testing.T) {
	var m map[string]int
	require.NoError(t, Convert(Dict{{String("a"), Int(1)}, {String("b"), Int(2)}}, &m))
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, m)

	var arr [3]int
	require.NoError(t, Convert(List{Int(1), Int(2)}, &arr))
	assert.Equal(t, [3]int{1, 2, 0}, arr)
	require.ErrorIs(t, Convert(List{Int(1), Int(2), Int(3), Int(4)}, &arr), ErrTypeMismatch)

	var key [4]byte
	require.NoError(t, Convert(Bytes{9, 8}, &key))
	assert.Equal(t, [4]byte{9, 8, 0, 0}, key)

	var nested [][]string
	require.NoError(t, Convert(List{List{String("x")}, List{}}, &nested))
	assert.Equal(t, [][]string{{"x"}, {}}, nested)

	var bad []int
	err := Convert(List{Int(1), String("two")}, &bad)
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "index 1")
}

func TestConvertPointersAndNull(t *testing.T) {
	var p *int
	require.NoError(t, Convert(Int(5), &p))
	require.NotNil(t, p)
	assert.Equal(t, 5, *p)

	require.NoError(t, Convert(Null{}, &p))
	assert.Nil(t, p)

	s := "keep"
	require.NoError(t, Convert(Null{}, &s))
	assert.Equal(t, "", s)
}

func TestConvertDynamicDestinations(t *testing.T) {
	var anyOut any
	require.NoError(t, Convert(List{Int(1), String("a")}, &anyOut))
	assert.Equal(t, []any{int64(1), "a"}, anyOut)

	var v Value
	require.NoError(t, Convert(Dict{{String("k"), Float64(1)}}, &v))
	assert.True(t, Equal(Dict{{String("k"), Float64(1)}}, v))
}

func TestConvertErrors(t *testing.T) {
	var n int
	require.ErrorIs(t, Convert(Int(1), n), ErrNotPointer)
	require.ErrorIs(t, Convert(Int(1), (*int)(nil)), ErrNotPointer)
	require.ErrorIs(t, Convert(String("x"), &n), ErrTypeMismatch)

	var s string
	require.ErrorIs(t, Convert(Int(1), &s), ErrTypeMismatch)

	var ch chan int
	require.ErrorIs(t, Convert(Int(1), &ch), ErrTypeMismatch)

	require.ErrorIs(t, Unmarshal([]byte{45}, &n), ErrUnknownTypeCode)
}
