package rencode

import (
	"bytes"
	"fmt"
	"math"
	"math/big"

	"github.com/rawbytedev/rencode/internal/common"
)

// DecodeOptions tunes a Decoder. The zero value matches Decode.
type DecodeOptions struct {
	// MaxDepth bounds list/dict nesting; 0 means unlimited.
	MaxDepth int
	// NoCopy makes decoded Bytes alias the input buffer instead of
	// copying it. The caller must keep the buffer alive and unmodified
	// for as long as the decoded values are in use.
	NoCopy bool
}

// Decoder decodes values with fixed options. It holds no per-call state
// and is safe for concurrent use.
type Decoder struct {
	Opts DecodeOptions
}

// NewDecoder returns a Decoder using opts.
func NewDecoder(opts DecodeOptions) *Decoder {
	return &Decoder{Opts: opts}
}

// Decode decodes the value starting at offset 0 of data.
func (d *Decoder) Decode(data []byte) (Value, error) {
	v, _, err := d.DecodeAt(data, 0)
	return v, err
}

// DecodeAt decodes the value whose lead byte is data[start] and returns
// it with the offset of the first byte after it. Bytes past that offset
// are never read.
func (d *Decoder) DecodeAt(data []byte, start int) (Value, int, error) {
	if start < 0 || start >= len(data) {
		return nil, start, fmt.Errorf("%w: start offset %d outside %d-byte input", ErrTruncated, start, len(data))
	}
	s := decodeState{data: data, opts: d.Opts}
	v, next, err := s.value(start)
	if err != nil {
		return nil, start, err
	}
	return v, next, nil
}

var defaultDecoder Decoder

// Decode decodes the value starting at offset 0 of data. Trailing bytes
// after the first value are ignored.
func Decode(data []byte) (Value, error) {
	return defaultDecoder.Decode(data)
}

// DecodeAt decodes the value starting at data[start]; see Decoder.DecodeAt.
func DecodeAt(data []byte, start int) (Value, int, error) {
	return defaultDecoder.DecodeAt(data, start)
}

// DecodeString decodes the value held in the bytes of s.
func DecodeString(s string) (Value, error) {
	return Decode([]byte(s))
}

// decodeFunc decodes the value led by code. off is the position right
// after the lead byte; the returned int is the next unread position.
type decodeFunc func(s *decodeState, code byte, off int) (Value, int, error)

// decoders is indexed by lead byte. Filled once by init, read-only after.
var decoders [256]decodeFunc

func init() {
	for c := '0'; c <= '9'; c++ {
		decoders[c] = decodeLenString
	}
	decoders[chrInt] = decodeDecimalInt
	decoders[chrInt1] = decodeFixedWidthInt
	decoders[chrInt2] = decodeFixedWidthInt
	decoders[chrInt4] = decodeFixedWidthInt
	decoders[chrInt8] = decodeFixedWidthInt
	decoders[chrFloat32] = decodeFloat32
	decoders[chrFloat64] = decodeFloat64
	decoders[chrList] = decodeList
	decoders[chrDict] = decodeDict
	decoders[chrTrue] = decodeLiteral
	decoders[chrFalse] = decodeLiteral
	decoders[chrNone] = decodeLiteral

	for i := 0; i < intPosFixedCount; i++ {
		decoders[intPosFixedStart+i] = decodePosFixed
	}
	for i := 0; i < intNegFixedCount; i++ {
		decoders[intNegFixedStart+i] = decodeNegFixed
	}
	for i := 0; i < strFixedCount; i++ {
		decoders[strFixedStart+i] = decodeStrFixed
	}
	for i := 0; i < listFixedCount; i++ {
		decoders[listFixedStart+i] = decodeListFixed
	}
	for i := 0; i < dictFixedCount; i++ {
		decoders[dictFixedStart+i] = decodeDictFixed
	}
}

type decodeState struct {
	data  []byte
	opts  DecodeOptions
	depth int
}

func (s *decodeState) value(off int) (Value, int, error) {
	if off >= len(s.data) {
		return nil, off, truncated(off, 1, len(s.data))
	}
	code := s.data[off]
	fn := decoders[code]
	if fn == nil {
		return nil, off, fmt.Errorf("%w: %d at offset %d", ErrUnknownTypeCode, code, off)
	}
	return fn(s, code, off+1)
}

// need checks that n bytes are readable at off.
func (s *decodeState) need(off int, n uint64) error {
	if uint64(len(s.data)-off) < n {
		return truncated(off, n, len(s.data))
	}
	return nil
}

func (s *decodeState) bytesAt(off, n int) Bytes {
	if s.opts.NoCopy {
		return Bytes(s.data[off : off+n : off+n])
	}
	out := make([]byte, n)
	copy(out, s.data[off:off+n])
	return out
}

func (s *decodeState) enter(off int) error {
	s.depth++
	if s.opts.MaxDepth > 0 && s.depth > s.opts.MaxDepth {
		return fmt.Errorf("%w: depth %d at offset %d", ErrMaxDepth, s.depth, off)
	}
	return nil
}

func (s *decodeState) leave() {
	s.depth--
}

func truncated(off int, n uint64, size int) error {
	return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, off, size-off)
}

// decodeLenString handles "<digits>:<payload>". The lead byte is the
// first digit of the length.
func decodeLenString(s *decodeState, _ byte, off int) (Value, int, error) {
	start := off - 1
	sep := bytes.IndexByte(s.data[start:], strLengthSep)
	if sep < 0 {
		for _, c := range s.data[start:] {
			if !common.IsDigit(c) {
				return nil, start, fmt.Errorf("%w: non-digit %q in string length at offset %d", ErrFormat, c, start)
			}
		}
		return nil, start, fmt.Errorf("%w: missing ':' after string length at offset %d", ErrTruncated, start)
	}
	n, ok := common.ParseDecimal(s.data[start:start+sep], math.MaxInt)
	if !ok {
		return nil, start, fmt.Errorf("%w: bad string length %q at offset %d", ErrFormat, s.data[start:start+sep], start)
	}
	off = start + sep + 1
	if err := s.need(off, n); err != nil {
		return nil, start, err
	}
	return s.bytesAt(off, int(n)), off + int(n), nil
}

func decodeStrFixed(s *decodeState, code byte, off int) (Value, int, error) {
	n := int(code) - strFixedStart
	if err := s.need(off, uint64(n)); err != nil {
		return nil, off, err
	}
	return s.bytesAt(off, n), off + n, nil
}

func decodeDecimalInt(s *decodeState, _ byte, off int) (Value, int, error) {
	end := off
	for {
		if end >= len(s.data) {
			return nil, off, fmt.Errorf("%w: integer at offset %d has no terminator", ErrTruncated, off)
		}
		if s.data[end] == chrTerm {
			break
		}
		if end-off >= maxIntLength {
			return nil, off, fmt.Errorf("%w: more than %d characters at offset %d", ErrOverflow, maxIntLength, off)
		}
		end++
	}
	v, err := parseCanonicalInt(s.data[off:end])
	if err != nil {
		return nil, off, fmt.Errorf("%w at offset %d", err, off)
	}
	return v, end + 1, nil
}

// parseCanonicalInt accepts an optional '-' followed by digits with no
// redundant leading zero. "-0" and "007" are rejected.
func parseCanonicalInt(run []byte) (Value, error) {
	digits := run
	neg := len(run) > 0 && run[0] == '-'
	if neg {
		digits = run[1:]
	}
	if len(digits) == 0 {
		return nil, fmt.Errorf("%w: empty integer literal %q", ErrFormat, run)
	}
	for _, c := range digits {
		if !common.IsDigit(c) {
			return nil, fmt.Errorf("%w: invalid integer literal %q", ErrFormat, run)
		}
	}
	if digits[0] == '0' && (neg || len(digits) > 1) {
		return nil, fmt.Errorf("%w: non-canonical integer literal %q", ErrFormat, run)
	}
	if neg {
		if n, ok := common.ParseDecimal(digits, 1<<63); ok {
			return Int(-int64(n-1) - 1), nil
		}
	} else if n, ok := common.ParseDecimal(digits, math.MaxInt64); ok {
		return Int(n), nil
	}
	x, ok := new(big.Int).SetString(string(run), 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid integer literal %q", ErrFormat, run)
	}
	return BigInt{x}, nil
}

var intWidths = map[byte]int{chrInt1: 1, chrInt2: 2, chrInt4: 4, chrInt8: 8}

func decodeFixedWidthInt(s *decodeState, code byte, off int) (Value, int, error) {
	width := intWidths[code]
	if err := s.need(off, uint64(width)); err != nil {
		return nil, off, err
	}
	return Int(common.ReadInt(s.data[off:], width)), off + width, nil
}

func decodeFloat32(s *decodeState, _ byte, off int) (Value, int, error) {
	if err := s.need(off, 4); err != nil {
		return nil, off, err
	}
	return Float32(common.ReadFloat32(s.data[off:])), off + 4, nil
}

func decodeFloat64(s *decodeState, _ byte, off int) (Value, int, error) {
	if err := s.need(off, 8); err != nil {
		return nil, off, err
	}
	return Float64(common.ReadFloat64(s.data[off:])), off + 8, nil
}

func decodeLiteral(_ *decodeState, code byte, off int) (Value, int, error) {
	switch code {
	case chrTrue:
		return Bool(true), off, nil
	case chrFalse:
		return Bool(false), off, nil
	default:
		return Null{}, off, nil
	}
}

func decodePosFixed(_ *decodeState, code byte, off int) (Value, int, error) {
	return Int(int(code) - intPosFixedStart), off, nil
}

func decodeNegFixed(_ *decodeState, code byte, off int) (Value, int, error) {
	return Int(-1 - (int(code) - intNegFixedStart)), off, nil
}

func decodeListFixed(s *decodeState, code byte, off int) (Value, int, error) {
	if err := s.enter(off - 1); err != nil {
		return nil, off, err
	}
	defer s.leave()
	count := int(code) - listFixedStart
	out := make(List, 0, count)
	for i := 0; i < count; i++ {
		v, next, err := s.value(off)
		if err != nil {
			return nil, off, err
		}
		out = append(out, v)
		off = next
	}
	return out, off, nil
}

func decodeList(s *decodeState, _ byte, off int) (Value, int, error) {
	if err := s.enter(off - 1); err != nil {
		return nil, off, err
	}
	defer s.leave()
	out := make(List, 0, listFixedCount)
	for {
		if off >= len(s.data) {
			return nil, off, fmt.Errorf("%w: list has no terminator", ErrTruncated)
		}
		if s.data[off] == chrTerm {
			return out, off + 1, nil
		}
		v, next, err := s.value(off)
		if err != nil {
			return nil, off, err
		}
		out = append(out, v)
		off = next
	}
}

func decodeDictFixed(s *decodeState, code byte, off int) (Value, int, error) {
	if err := s.enter(off - 1); err != nil {
		return nil, off, err
	}
	defer s.leave()
	count := int(code) - dictFixedStart
	out := make(Dict, 0, count)
	for i := 0; i < count; i++ {
		p, next, err := s.pair(off)
		if err != nil {
			return nil, off, err
		}
		out = append(out, p)
		off = next
	}
	return out, off, nil
}

func decodeDict(s *decodeState, _ byte, off int) (Value, int, error) {
	if err := s.enter(off - 1); err != nil {
		return nil, off, err
	}
	defer s.leave()
	out := make(Dict, 0, dictFixedCount)
	for {
		if off >= len(s.data) {
			return nil, off, fmt.Errorf("%w: dict has no terminator", ErrTruncated)
		}
		if s.data[off] == chrTerm {
			return out, off + 1, nil
		}
		p, next, err := s.pair(off)
		if err != nil {
			return nil, off, err
		}
		out = append(out, p)
		off = next
	}
}

func (s *decodeState) pair(off int) (Pair, int, error) {
	k, off, err := s.value(off)
	if err != nil {
		return Pair{}, off, err
	}
	v, off, err := s.value(off)
	if err != nil {
		return Pair{}, off, err
	}
	return Pair{Key: k, Value: v}, off, nil
}
