package rencode

import (
	"math"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginRequest struct {
	ID       int
	Method   string   `rencode:"method"`
	Args     []string `rencode:"args"`
	Token    []byte   `rencode:"token,omitempty"`
	Internal string   `rencode:"-"`
	hidden   int
	Extra    Value `rencode:"extra,omitempty"`
}

type label string

func TestValueOfScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"bool", true, Bool(true)},
		{"int8", int8(-5), Int(-5)},
		{"uint16", uint16(65535), Int(65535)},
		{"uint64 in range", uint64(math.MaxInt64), Int(math.MaxInt64)},
		{"float32", float32(2.5), Float32(2.5)},
		{"float64", 2.5, Float64(2.5)},
		{"string", "hi", String("hi")},
		{"bytes", []byte{1, 2}, Bytes{1, 2}},
		{"named string", label("x"), String("x")},
		{"byte array", [3]byte{1, 2, 3}, Bytes{1, 2, 3}},
		{"value passthrough", List{Int(1)}, List{Int(1)}},
		{"pointer to value", &List{Int(1)}, List{Int(1)}},
		{"nil pointer", (*int)(nil), Null{}},
		{"nil big", (*big.Int)(nil), Null{}},
		{"small big", big.NewInt(9), Int(9)},
		{"any slice", []any{1, "a", nil}, List{Int(1), String("a"), Null{}}},
		{"int slice", []int{3, 4}, List{Int(3), Int(4)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValueOf(tc.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got, valueComparer); diff != "" {
				t.Errorf("ValueOf(%#v) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestValueOfLargeUnsigned(t *testing.T) {
	got, err := ValueOf(uint64(math.MaxUint64))
	require.NoError(t, err)
	b, ok := got.(BigInt)
	require.True(t, ok, "got %T", got)
	assert.Equal(t, "18446744073709551615", b.String())

	enc, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, cat(61, "18446744073709551615", 127), enc)
}

func TestValueOfMapOrder(t *testing.T) {
	// Pairs are sorted by their encoded key, so shorter strings lead.
	got, err := ValueOf(map[string]int{"aa": 2, "b": 1, "c": 3})
	require.NoError(t, err)
	want := Dict{{String("b"), Int(1)}, {String("c"), Int(3)}, {String("aa"), Int(2)}}
	assert.Equal(t, want, got)

	a, err := Marshal(map[int]string{1: "x", 2: "y", 3: "z"})
	require.NoError(t, err)
	b, err := Marshal(map[int]string{3: "z", 1: "x", 2: "y"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// map[string]any takes the fast path and sorts keys lexically.
	got, err = ValueOf(map[string]any{"b": 1, "a": nil})
	require.NoError(t, err)
	assert.Equal(t, Dict{{String("a"), Null{}}, {String("b"), Int(1)}}, got)
}

func TestValueOfStruct(t *testing.T) {
	req := loginRequest{ID: 3, Method: "daemon.login", Args: []string{"u", "p"}, Internal: "skip", hidden: 9}
	got, err := ValueOf(req)
	require.NoError(t, err)
	want := Dict{
		{String("ID"), Int(3)},
		{String("method"), String("daemon.login")},
		{String("args"), List{String("u"), String("p")}},
	}
	if diff := cmp.Diff(want, got, valueComparer); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	req.Token = []byte{7}
	req.Extra = Bool(true)
	got, err = ValueOf(&req)
	require.NoError(t, err)
	d := got.(Dict)
	require.Len(t, d, 5)
	v, ok := d.Lookup("extra")
	require.True(t, ok)
	assert.Equal(t, Bool(true), v)
}

func TestValueOfUnsupported(t *testing.T) {
	_, err := ValueOf(make(chan int))
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ValueOf(complex(1, 2))
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ValueOf(struct{ F func() }{})
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Marshal([]any{1, make(chan int)})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestValueOfCycle(t *testing.T) {
	type node struct{ Next *node }
	n := &node{}
	n.Next = n
	_, err := ValueOf(n)
	require.ErrorIs(t, err, ErrMaxDepth)

	a := []any{nil}
	a[0] = a
	_, err = ValueOf(a)
	require.ErrorIs(t, err, ErrMaxDepth)

	m := map[string]any{}
	m["self"] = m
	_, err = ValueOf(m)
	require.ErrorIs(t, err, ErrMaxDepth)

	_, err = Marshal([]any{map[string]any{"a": a}})
	require.ErrorIs(t, err, ErrMaxDepth)
}

func TestMarshalDeluge(t *testing.T) {
	got, err := Marshal([]any{[]any{0, "daemon.login", []string{"username", "password"}, map[string]any{}}})
	require.NoError(t, err)
	assert.Equal(t, cat(193, 196, 0, 140, "daemon.login", 194, 136, "username", 136, "password", 102), got)
}
