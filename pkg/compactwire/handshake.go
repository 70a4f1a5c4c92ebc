package compactwire

import (
	"errors"
	"math/bits"
	"slices"
)

// ErrNoCommonVersion means two handshakes share no protocol version.
var ErrNoCommonVersion = errors.New("compactwire: no common protocol version")

// Negotiate combines the local and remote handshakes into the settings
// both sides can use: the shared version bits, the smaller MTU and
// timeout (zero meaning unset), and the first algorithm in local
// preference order that the remote also offers. When no algorithm is
// shared the session runs uncompressed with AlgNone.
func Negotiate(local, remote HandshakeFrame) (HandshakeFrame, error) {
	mask := local.VersionMask & remote.VersionMask
	if mask == 0 {
		return HandshakeFrame{}, ErrNoCommonVersion
	}
	alg := AlgNone
	for _, a := range local.AlgCodes {
		if slices.Contains(remote.AlgCodes, a) {
			alg = a
			break
		}
	}
	return HandshakeFrame{
		VersionMask: mask,
		MTU:         minNonZero(local.MTU, remote.MTU),
		TimeoutMS:   minNonZero(local.TimeoutMS, remote.TimeoutMS),
		AlgCodes:    []Algorithm{alg},
	}, nil
}

// Version returns the highest version bit set in a negotiated mask, or
// -1 when none is.
func (h HandshakeFrame) Version() int {
	if h.VersionMask == 0 {
		return -1
	}
	return bits.Len32(h.VersionMask) - 1
}

func minNonZero[T uint16 | uint32](a, b T) T {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	default:
		return min(a, b)
	}
}
