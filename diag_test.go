package rencode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagNested(t *testing.T) {
	in := cat(194, 131, "one", 103, 129, "k", 59, 68, 127)
	got, err := Diag(in)
	require.NoError(t, err)
	want := strings.Join([]string{
		`0000 LIST_FIXED    [2]`,
		`0001   STR_FIXED     "one"`,
		`0005   DICT_FIXED    {1}`,
		`0006     STR_FIXED     "k"`,
		`0008     LIST          [...]`,
		`0009       FALSE         false`,
		`0010     TERM`,
		``,
	}, "\n")
	assert.Equal(t, want, got)
}

func TestDiagScalars(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte{63, 0xF9, 0xFC}, "0000 INT2          -1540\n"},
		{[]byte{130, 0xFF, 0x00}, "0000 STR_FIXED     h'ff00'\n"},
		{[]byte{69}, "0000 NONE          null\n"},
		{[]byte{44, 0x3F, 0xF8, 0, 0, 0, 0, 0, 0}, "0000 FLOAT64       1.5\n"},
	}
	for _, tc := range tests {
		got, err := Diag(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestDiagErrors(t *testing.T) {
	_, err := Diag(nil)
	require.ErrorIs(t, err, ErrTruncated)

	out, err := Diag([]byte{194, 1, 45})
	require.ErrorIs(t, err, ErrUnknownTypeCode)
	assert.Contains(t, out, "0002   UNKNOWN       !error")

	_, err = Diag([]byte{59, 1})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDiagGenericDict(t *testing.T) {
	out, err := Diag([]byte{60, 1, 2, 127})
	require.NoError(t, err)
	want := "0000 DICT          {...}\n" +
		"0001   INT_POS_FIXED 1\n" +
		"0002   INT_POS_FIXED 2\n" +
		"0003 TERM\n"
	assert.Equal(t, want, out)

	// A TERM in value position is rejected, as Decode does.
	_, decErr := Decode([]byte{60, 1, 127})
	require.ErrorIs(t, decErr, ErrUnknownTypeCode)
	out, err = Diag([]byte{60, 1, 127})
	require.ErrorIs(t, err, ErrUnknownTypeCode)
	assert.Contains(t, out, "0002   TERM          !error")
}
