// Package compactwire wraps encoded values in small self-checking frames.
//
// Every frame starts with the two magic bytes "RE" and a frame type,
// followed by a little-endian uint32 length and ends with a CRC32-IEEE
// checksum. Data frames carry rencode payloads, optionally compressed with
// zstd or lz4 and optionally indexed by an offset table when several
// values share one frame.
package compactwire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame types.
const (
	TypeData      byte = 1
	TypeError     byte = 2
	TypeHandshake byte = 3
)

// Data frame flags.
const (
	FlagHasOffsetTable byte = 1 << 0
	FlagZstd           byte = 1 << 1
	FlagLZ4            byte = 1 << 2

	compressionMask = FlagZstd | FlagLZ4
)

const (
	preambleSize = 3
	lengthSize   = 4
	crcSize      = 4
	headerSize   = preambleSize + lengthSize

	// MaxFrameSize bounds frames read from a stream and payloads
	// inflated from a compressed frame.
	MaxFrameSize = 64 << 20
)

var magic = [2]byte{'R', 'E'}

var (
	ErrNotDataFrame   = errors.New("compactwire: not a data frame")
	ErrNotErrorFrame  = errors.New("compactwire: not an error frame")
	ErrNotHandshake   = errors.New("compactwire: not a handshake frame")
	ErrLengthMismatch = errors.New("compactwire: length mismatch")
	ErrCRCMismatch    = errors.New("compactwire: crc mismatch")
	ErrShortFrame     = errors.New("compactwire: short frame")
	ErrCompression    = errors.New("compactwire: compression error")
	ErrBadPreamble    = errors.New("compactwire: bad frame preamble")
)

// DataFrame builds and parses data frames. Its buffer is reused between
// EncodeDataFrame calls, so the returned slice is only valid until the
// next call. A DataFrame is not safe for concurrent use.
type DataFrame struct {
	buf bytes.Buffer
}

// ErrorFrame builds and parses error frames.
type ErrorFrame struct {
	buf bytes.Buffer
}

// HandshakeFrame advertises what a peer supports.
type HandshakeFrame struct {
	VersionMask uint32
	MTU         uint16
	TimeoutMS   uint32
	// AlgCodes lists compression algorithms in order of preference.
	AlgCodes []Algorithm
}

func writePreamble(buf *bytes.Buffer, t byte) {
	buf.Write(magic[:])
	buf.WriteByte(t)
}

// cursor reads little-endian fields from a frame. The first read past
// the end sets err to ErrShortFrame and every later read returns zero.
type cursor struct {
	data []byte
	off  int
	err  error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || len(c.data)-c.off < n {
		c.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortFrame, n, c.off, len(c.data)-c.off)
		return nil
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) u8() byte {
	if b := c.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (c *cursor) u16() uint16 {
	if b := c.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (c *cursor) u32() uint32 {
	if b := c.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

// frameType reports the type byte of data when it starts with a valid
// preamble.
func frameType(data []byte) (byte, bool) {
	if len(data) < preambleSize || data[0] != magic[0] || data[1] != magic[1] {
		return 0, false
	}
	return data[2], true
}
