package compactwire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

// EncodeDataFrame frames payload. When flags has FlagHasOffsetTable the
// offsets are written ahead of the payload. FlagZstd or FlagLZ4 compress
// the payload; if compression does not make it smaller the flag is
// dropped and the payload is stored as is.
func (d *DataFrame) EncodeDataFrame(payload []byte, flags byte, offsets []uint32) ([]byte, error) {
	if flags&FlagHasOffsetTable != 0 && len(offsets) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d offsets do not fit the table", ErrLengthMismatch, len(offsets))
	}
	if len(payload) > MaxFrameSize {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrLengthMismatch, len(payload), MaxFrameSize)
	}
	body, err := compress(flags, payload)
	if errors.Is(err, errIncompressible) {
		flags &^= compressionMask
		body = payload
	} else if err != nil {
		return nil, err
	}

	d.buf.Reset()
	writePreamble(&d.buf, TypeData)
	binary.Write(&d.buf, binary.LittleEndian, uint32(0)) // length placeholder
	d.buf.WriteByte(flags)

	if flags&FlagHasOffsetTable != 0 {
		binary.Write(&d.buf, binary.LittleEndian, uint16(len(offsets)))
		for _, off := range offsets {
			binary.Write(&d.buf, binary.LittleEndian, off)
		}
	}
	if flags&compressionMask != 0 {
		binary.Write(&d.buf, binary.LittleEndian, uint32(len(payload)))
	}
	d.buf.Write(body)
	return sealFrame(&d.buf, 4), nil
}

// EncodeErrorFrame builds an error frame carrying code and data.
func (e *ErrorFrame) EncodeErrorFrame(code byte, data []byte) ([]byte, error) {
	if len(data) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: error data of %d bytes", ErrLengthMismatch, len(data))
	}
	e.buf.Reset()
	writePreamble(&e.buf, TypeError)

	// TLV length = code(1) + dataLen(2) + len(data)
	binary.Write(&e.buf, binary.LittleEndian, uint32(1+2+len(data)))
	e.buf.WriteByte(code)
	binary.Write(&e.buf, binary.LittleEndian, uint16(len(data)))
	e.buf.Write(data)
	return appendCRC(&e.buf, 2), nil
}

// EncodeHandshake serializes h.
func EncodeHandshake(h HandshakeFrame) ([]byte, error) {
	if len(h.AlgCodes) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d algorithm codes", ErrLengthMismatch, len(h.AlgCodes))
	}
	var buf bytes.Buffer
	writePreamble(&buf, TypeHandshake)
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // length placeholder
	binary.Write(&buf, binary.LittleEndian, h.VersionMask)
	binary.Write(&buf, binary.LittleEndian, h.MTU)
	binary.Write(&buf, binary.LittleEndian, h.TimeoutMS)
	binary.Write(&buf, binary.LittleEndian, uint16(len(h.AlgCodes)))
	for _, a := range h.AlgCodes {
		buf.WriteByte(byte(a))
	}
	return sealFrame(&buf, 2), nil
}

// sealFrame fills in the total length at offset 3 and appends the CRC of
// everything from crcStart on.
func sealFrame(buf *bytes.Buffer, crcStart int) []byte {
	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[preambleSize:], uint32(len(out)+crcSize))
	return appendCRC(buf, crcStart)
}

func appendCRC(buf *bytes.Buffer, crcStart int) []byte {
	var tail [crcSize]byte
	binary.LittleEndian.PutUint32(tail[:], crc32.ChecksumIEEE(buf.Bytes()[crcStart:]))
	buf.Write(tail[:])
	return buf.Bytes()
}
