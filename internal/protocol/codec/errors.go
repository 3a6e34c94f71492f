package codec

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated    = errors.New("codec: truncated data")
	ErrValueRange   = errors.New("codec: value out of range")
	ErrVLQOverflow  = errors.New("codec: vlq exceeds 64 bits")
	ErrUnknownInput = errors.New("codec: unsupported input type")
	ErrVariantDepth = errors.New("codec: variant nesting too deep")
)

// UnknownTagError reports a Variant tag byte outside the defined range.
type UnknownTagError struct {
	Tag uint8
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("codec: unknown variant tag %d", e.Tag)
}

// TypeError reports an encode input whose Go type a codec cannot accept.
type TypeError struct {
	Codec string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("codec: %s cannot encode %T", e.Codec, e.Value)
}

// FieldError reports the first failing field of a composite record. Partial
// holds every field decoded before the failure.
type FieldError struct {
	Record  string
	Field   string
	Partial *Record
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("codec: %s.%s: %v", e.Record, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
