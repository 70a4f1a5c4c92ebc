package compactwire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// DecodeDataFrame verifies a data frame and returns its payload,
// decompressed when needed, together with the offset table and the flags
// found on the wire. An uncompressed payload aliases data.
func (d *DataFrame) DecodeDataFrame(data []byte) ([]byte, []uint32, byte, error) {
	if t, ok := frameType(data); !ok || t != TypeData {
		return nil, nil, 0, ErrNotDataFrame
	}
	if len(data) < headerSize+1+crcSize {
		return nil, nil, 0, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	if length := binary.LittleEndian.Uint32(data[preambleSize:]); int64(length) != int64(len(data)) {
		return nil, nil, 0, fmt.Errorf("%w: header says %d, frame has %d", ErrLengthMismatch, length, len(data))
	}
	end := len(data) - crcSize
	if err := checkCRC(data, 4, end); err != nil {
		return nil, nil, 0, err
	}

	c := cursor{data: data[:end], off: headerSize}
	flags := c.u8()
	var offsets []uint32
	if flags&FlagHasOffsetTable != 0 {
		cnt := c.u16()
		offsets = make([]uint32, 0, cnt)
		for i := 0; i < int(cnt) && c.err == nil; i++ {
			offsets = append(offsets, c.u32())
		}
	}
	var size uint32
	if flags&compressionMask != 0 {
		size = c.u32()
	}
	if c.err != nil {
		return nil, nil, 0, c.err
	}
	if size > MaxFrameSize {
		return nil, nil, 0, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrCompression, size, MaxFrameSize)
	}

	payload, err := decompress(flags, data[c.off:end], int(size))
	if err != nil {
		return nil, nil, 0, err
	}
	return payload, offsets, flags, nil
}

// DecodeErrorFrame verifies an error frame and returns its code and data.
func (e *ErrorFrame) DecodeErrorFrame(data []byte) (byte, []byte, error) {
	if t, ok := frameType(data); !ok || t != TypeError {
		return 0, nil, ErrNotErrorFrame
	}
	if len(data) < headerSize+3+crcSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	end := len(data) - crcSize
	if err := checkCRC(data, 2, end); err != nil {
		return 0, nil, err
	}

	c := cursor{data: data[:end], off: preambleSize}
	tlv := c.u32()
	code := c.u8()
	n := c.u16()
	custom := c.take(int(n))
	if c.err != nil {
		return 0, nil, c.err
	}
	if int64(tlv) != 3+int64(n) || c.off != end {
		return 0, nil, fmt.Errorf("%w: tlv %d for %d data bytes", ErrLengthMismatch, tlv, n)
	}
	return code, custom, nil
}

// DecodeHandshake verifies a handshake frame and returns its contents.
func DecodeHandshake(data []byte) (HandshakeFrame, error) {
	var h HandshakeFrame
	if t, ok := frameType(data); !ok || t != TypeHandshake {
		return h, ErrNotHandshake
	}
	if len(data) < headerSize+12+crcSize {
		return h, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}
	if length := binary.LittleEndian.Uint32(data[preambleSize:]); int64(length) != int64(len(data)) {
		return h, fmt.Errorf("%w: header says %d, frame has %d", ErrLengthMismatch, length, len(data))
	}
	end := len(data) - crcSize
	if err := checkCRC(data, 2, end); err != nil {
		return h, err
	}

	c := cursor{data: data[:end], off: headerSize}
	h.VersionMask = c.u32()
	h.MTU = c.u16()
	h.TimeoutMS = c.u32()
	n := c.u16()
	codes := c.take(int(n))
	if c.err != nil {
		return HandshakeFrame{}, c.err
	}
	if c.off != end {
		return HandshakeFrame{}, fmt.Errorf("%w: %d trailing bytes", ErrLengthMismatch, end-c.off)
	}
	h.AlgCodes = make([]Algorithm, len(codes))
	for i, a := range codes {
		h.AlgCodes[i] = Algorithm(a)
	}
	return h, nil
}

func checkCRC(data []byte, start, end int) error {
	want := binary.LittleEndian.Uint32(data[end:])
	if got := crc32.ChecksumIEEE(data[start:end]); got != want {
		return fmt.Errorf("%w: got %08x, want %08x", ErrCRCMismatch, got, want)
	}
	return nil
}

// ReadFrame reads exactly one frame from r and returns its bytes without
// verifying the checksum. It returns io.EOF only when r is exhausted
// before the first byte of a frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v", ErrShortFrame, err)
		}
		return nil, err
	}
	t, ok := frameType(hdr[:])
	if !ok {
		return nil, fmt.Errorf("%w: % x", ErrBadPreamble, hdr[:preambleSize])
	}
	n := int64(binary.LittleEndian.Uint32(hdr[preambleSize:]))
	var total int64
	switch t {
	case TypeData, TypeHandshake:
		total = n
	case TypeError:
		total = headerSize + n + crcSize
	default:
		return nil, fmt.Errorf("%w: unknown frame type %d", ErrBadPreamble, t)
	}
	if total < headerSize+crcSize || total > MaxFrameSize {
		return nil, fmt.Errorf("%w: frame length %d", ErrLengthMismatch, total)
	}

	frame := make([]byte, total)
	copy(frame, hdr[:])
	if _, err := io.ReadFull(r, frame[headerSize:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %v", ErrShortFrame, err)
		}
		return nil, err
	}
	return frame, nil
}
