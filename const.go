package rencode

// Type codes. The bencode typecodes are relocated on the base-256
// character set; the digit range 48-57 is left to length-prefixed strings.
const (
	chrList    byte = 59
	chrDict    byte = 60
	chrInt     byte = 61
	chrInt1    byte = 62
	chrInt2    byte = 63
	chrInt4    byte = 64
	chrInt8    byte = 65
	chrFloat32 byte = 66
	chrFloat64 byte = 44
	chrTrue    byte = 67
	chrFalse   byte = 68
	chrNone    byte = 69
	chrTerm    byte = 127
)

// Fixed ranges embed a value or a count in the type code itself.
const (
	intPosFixedStart = 0
	intPosFixedCount = 44
	intNegFixedStart = 70
	intNegFixedCount = 32
	dictFixedStart   = 102
	dictFixedCount   = 25
	strFixedStart    = 128
	strFixedCount    = 64
	listFixedStart   = strFixedStart + strFixedCount
	listFixedCount   = 64
	maxIntLength     = 64
)

const strLengthSep byte = ':'

// codeNames labels every assigned lead byte for diagnostics.
var codeNames = map[byte]string{
	chrList:    "LIST",
	chrDict:    "DICT",
	chrInt:     "INT",
	chrInt1:    "INT1",
	chrInt2:    "INT2",
	chrInt4:    "INT4",
	chrInt8:    "INT8",
	chrFloat32: "FLOAT32",
	chrFloat64: "FLOAT64",
	chrTrue:    "TRUE",
	chrFalse:   "FALSE",
	chrNone:    "NONE",
	chrTerm:    "TERM",
}

// CodeName returns a short mnemonic for the lead byte c, such as
// "INT2", "STR_FIXED" or "DIGIT". Unassigned bytes return "UNKNOWN".
func CodeName(c byte) string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	switch {
	case c < intPosFixedStart+intPosFixedCount:
		return "INT_POS_FIXED"
	case c >= '0' && c <= '9':
		return "DIGIT"
	case c >= intNegFixedStart && c < intNegFixedStart+intNegFixedCount:
		return "INT_NEG_FIXED"
	case c >= dictFixedStart && c < dictFixedStart+dictFixedCount:
		return "DICT_FIXED"
	case c >= strFixedStart && c < strFixedStart+strFixedCount:
		return "STR_FIXED"
	case c >= listFixedStart:
		return "LIST_FIXED"
	}
	return "UNKNOWN"
}
