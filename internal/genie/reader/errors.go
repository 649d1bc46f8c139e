package reader

import (
	"errors"
	"fmt"
)

// Failure kinds. ReadError wraps exactly one of these; test with errors.Is.
var (
	ErrUnknownRawType      = errors.New("unknown raw type")
	ErrInvalidLength       = errors.New("invalid length")
	ErrNonFiniteFloat      = errors.New("non-finite float")
	ErrUnknownSubtype      = errors.New("unknown subtype")
	ErrStorageTypeMismatch = errors.New("storage type mismatch")
	ErrIncompleteBuffer    = errors.New("incomplete buffer")
	ErrVerifyFailed        = errors.New("verification failed")
)

// ErrUnknownField is returned by Record lookups for names not yet read.
var ErrUnknownField = errors.New("unknown field")

// ErrFieldType is returned by Record lookups when a field holds a value of the wrong kind.
var ErrFieldType = errors.New("field has wrong type")

// ReadError locates a decode failure.
type ReadError struct {
	// Path is the dotted member path, e.g. "EmpiresDat.sounds[3].items[0].filename".
	Path string
	// Offset is the cursor position when the failure was detected.
	Offset int
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s at offset %#x: %v", e.Path, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
