package rencode

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Diag renders the first value in data as indented text, one node per
// line, each prefixed with its offset and type-code mnemonic:
//
//	0000 LIST_FIXED    [2]
//	0001   STR_FIXED     "one"
//	0005   INT_POS_FIXED 7
func Diag(data []byte) (string, error) {
	var sb strings.Builder
	s := decodeState{data: data}
	if len(data) == 0 {
		return "", truncated(0, 1, 0)
	}
	if _, err := s.diag(&sb, 0, 0); err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}

func (s *decodeState) diag(sb *strings.Builder, off, indent int) (int, error) {
	if off >= len(s.data) {
		return off, truncated(off, 1, len(s.data))
	}
	code := s.data[off]
	fmt.Fprintf(sb, "%04d %s%-13s ", off, strings.Repeat("  ", indent), CodeName(code))

	var count int
	generic := false
	switch {
	case code == chrList, code == chrDict:
		generic = true
	case code >= listFixedStart:
		count = int(code) - listFixedStart
	case code >= dictFixedStart && code < dictFixedStart+dictFixedCount:
		count = int(code) - dictFixedStart
	default:
		v, next, err := s.value(off)
		if err != nil {
			sb.WriteString("!error\n")
			return off, err
		}
		sb.WriteString(formatScalar(v))
		sb.WriteByte('\n')
		return next, nil
	}

	isDict := code == chrDict || (code >= dictFixedStart && code < dictFixedStart+dictFixedCount)
	switch {
	case generic && isDict:
		sb.WriteString("{...}\n")
	case generic:
		sb.WriteString("[...]\n")
	case isDict:
		fmt.Fprintf(sb, "{%d}\n", count)
	default:
		fmt.Fprintf(sb, "[%d]\n", count)
	}

	off++
	children := count
	if isDict {
		children *= 2
	}
	var err error
	for i := 0; generic || i < children; i++ {
		// TERM only closes a dict where a key would start.
		if generic && (!isDict || i%2 == 0) {
			if off >= len(s.data) {
				return off, truncated(off, 1, len(s.data))
			}
			if s.data[off] == chrTerm {
				fmt.Fprintf(sb, "%04d %sTERM\n", off, strings.Repeat("  ", indent))
				return off + 1, nil
			}
		}
		if off, err = s.diag(sb, off, indent+1); err != nil {
			return off, err
		}
	}
	return off, nil
}

func formatScalar(v Value) string {
	switch x := v.(type) {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(bool(x))
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case BigInt:
		return x.String()
	case Float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case Float64:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Bytes:
		if utf8.Valid(x) {
			return strconv.Quote(string(x))
		}
		return fmt.Sprintf("h'%x'", []byte(x))
	}
	return fmt.Sprintf("%v", v)
}
