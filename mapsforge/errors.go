package mapsforge

import (
	"errors"

	"github.com/jamesrr39/goutil/errorsx"
)

// sentinel errors for the decode failure kinds. Use errorsx.Cause to get
// back to the sentinel from a wrapped error.
var (
	ErrInvalidMagic    = errors.New("not a mapsforge binary map file")
	ErrTruncatedInput  = errors.New("unexpected end of map file")
	ErrInvalidEncoding = errors.New("invalid field encoding in map file")
)

// IsFormatError reports whether err is a map file format violation, as
// opposed to an I/O failure from the underlying reader.
func IsFormatError(err error) bool {
	cause := errorsx.Cause(err)
	return cause == ErrInvalidMagic || cause == ErrTruncatedInput || cause == ErrInvalidEncoding
}
