package rencode

import "errors"

var (
	ErrUnsupportedType = errors.New("rencode: unsupported type")
	ErrRange           = errors.New("rencode: integer too long for decimal form")
	ErrUnknownTypeCode = errors.New("rencode: unknown type code")
	ErrTruncated       = errors.New("rencode: truncated input")
	ErrFormat          = errors.New("rencode: malformed input")
	ErrOverflow        = errors.New("rencode: integer literal too long")
	ErrMaxDepth        = errors.New("rencode: maximum nesting depth exceeded")
	ErrNotPointer      = errors.New("rencode: destination must be a non-nil pointer")
	ErrTypeMismatch    = errors.New("rencode: value does not fit destination")
)
