package compactwire

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm is a compression algorithm code as advertised in handshakes.
type Algorithm uint8

const (
	AlgNone Algorithm = 0
	AlgZstd Algorithm = 1
	AlgLZ4  Algorithm = 2
)

func (a Algorithm) String() string {
	switch a {
	case AlgNone:
		return "none"
	case AlgZstd:
		return "zstd"
	case AlgLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// Flag returns the data frame flag selecting a.
func (a Algorithm) Flag() byte {
	switch a {
	case AlgZstd:
		return FlagZstd
	case AlgLZ4:
		return FlagLZ4
	default:
		return 0
	}
}

// ParseAlgorithm maps "none", "zstd" or "lz4" to its Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "", "none":
		return AlgNone, nil
	case "zstd":
		return AlgZstd, nil
	case "lz4":
		return AlgLZ4, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm %q", ErrCompression, name)
	}
}

// errIncompressible means compression would not shrink the payload; the
// frame is then stored raw.
var errIncompressible = errors.New("compactwire: payload is incompressible")

// zstd encoders and decoders are safe for concurrent use and costly to
// build, so one of each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compactwire: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxFrameSize))
	if err != nil {
		panic("compactwire: zstd decoder initialization failed: " + err.Error())
	}
}

// compress applies the algorithm selected by flags to raw.
func compress(flags byte, raw []byte) ([]byte, error) {
	switch flags & compressionMask {
	case 0:
		return raw, nil
	case FlagZstd:
		out := zstdEncoder.EncodeAll(raw, nil)
		if len(out) >= len(raw) {
			return nil, errIncompressible
		}
		return out, nil
	case FlagLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCompression, err)
		}
		if n == 0 || n >= len(raw) {
			return nil, errIncompressible
		}
		return dst[:n], nil
	default:
		return nil, fmt.Errorf("%w: zstd and lz4 flags are mutually exclusive", ErrCompression)
	}
}

// decompress inflates payload to exactly size bytes.
func decompress(flags byte, payload []byte, size int) ([]byte, error) {
	switch flags & compressionMask {
	case 0:
		return payload, nil
	case FlagZstd:
		out, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, want %d", ErrCompression, len(out), size)
		}
		return out, nil
	case FlagLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCompression, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", ErrCompression, n, size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: zstd and lz4 flags are mutually exclusive", ErrCompression)
	}
}
