package compactwire

import (
	"fmt"
	"math"

	"github.com/rawbytedev/rencode"
)

// EncodeValue encodes v and wraps it in a data frame.
func EncodeValue(v rencode.Value, flags byte) ([]byte, error) {
	payload, err := rencode.Encode(v)
	if err != nil {
		return nil, err
	}
	var d DataFrame
	return d.EncodeDataFrame(payload, flags&^FlagHasOffsetTable, nil)
}

// EncodeValues packs vs back to back into one data frame and records the
// start of each in the offset table.
func EncodeValues(vs []rencode.Value, flags byte) ([]byte, error) {
	var payload []byte
	offsets := make([]uint32, 0, len(vs))
	for i, v := range vs {
		if uint64(len(payload)) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: value %d starts past 4GiB", ErrLengthMismatch, i)
		}
		offsets = append(offsets, uint32(len(payload)))
		var err error
		if payload, err = rencode.Append(payload, v); err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	var d DataFrame
	return d.EncodeDataFrame(payload, flags|FlagHasOffsetTable, offsets)
}

// DecodeValue verifies a data frame and decodes the single value it
// carries. Bytes after the value are an error.
func DecodeValue(data []byte) (rencode.Value, error) {
	return DecodeValueWith(rencode.NewDecoder(rencode.DecodeOptions{}), data)
}

// DecodeValueWith is DecodeValue using dec for the payload.
func DecodeValueWith(dec *rencode.Decoder, data []byte) (rencode.Value, error) {
	var d DataFrame
	payload, _, _, err := d.DecodeDataFrame(data)
	if err != nil {
		return nil, err
	}
	v, next, err := dec.DecodeAt(payload, 0)
	if err != nil {
		return nil, err
	}
	if next != len(payload) {
		return nil, fmt.Errorf("%w: %d bytes after value", ErrLengthMismatch, len(payload)-next)
	}
	return v, nil
}

// DecodeValues decodes every value listed in the frame's offset table.
// A frame without a table yields its single value.
func DecodeValues(data []byte) ([]rencode.Value, error) {
	return DecodeValuesWith(rencode.NewDecoder(rencode.DecodeOptions{}), data)
}

// DecodeValuesWith is DecodeValues using dec for the payload.
func DecodeValuesWith(dec *rencode.Decoder, data []byte) ([]rencode.Value, error) {
	var d DataFrame
	payload, offsets, flags, err := d.DecodeDataFrame(data)
	if err != nil {
		return nil, err
	}
	if flags&FlagHasOffsetTable == 0 {
		offsets = []uint32{0}
	}
	out := make([]rencode.Value, 0, len(offsets))
	for i, off := range offsets {
		end := len(payload)
		if i+1 < len(offsets) {
			end = int(offsets[i+1])
		}
		if int(off) > end || end > len(payload) {
			return nil, fmt.Errorf("%w: offset %d out of order", ErrLengthMismatch, i)
		}
		v, next, err := dec.DecodeAt(payload[:end], int(off))
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		if next != end {
			return nil, fmt.Errorf("%w: value %d ends at %d, next starts at %d", ErrLengthMismatch, i, next, end)
		}
		out = append(out, v)
	}
	return out, nil
}
