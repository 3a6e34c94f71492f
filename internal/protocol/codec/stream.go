package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"
)

// chunkedReadThreshold bounds the up-front allocation for a length-prefixed
// read. Larger reads grow with the data actually present.
const chunkedReadThreshold = 64 * 1024

// Stream is the buffered, peekable input every decode runs against.
type Stream struct {
	r   *bufio.Reader
	off int64
}

// NewStream normalizes input into a Stream. Accepted inputs are []byte,
// string, *Stream, *bufio.Reader and io.Reader. A *Stream is returned as is.
// Nil readers, including typed nil pointers, fail with ErrUnknownInput.
func NewStream(input any) (*Stream, error) {
	switch in := input.(type) {
	case *Stream:
		if in == nil {
			return nil, ErrUnknownInput
		}
		return in, nil
	case []byte:
		return &Stream{r: bufio.NewReader(bytes.NewReader(in))}, nil
	case string:
		return &Stream{r: bufio.NewReader(strings.NewReader(in))}, nil
	case *bufio.Reader:
		if in == nil {
			return nil, ErrUnknownInput
		}
		return &Stream{r: in}, nil
	case io.Reader:
		if isNilReader(in) {
			return nil, fmt.Errorf("%w: nil %T", ErrUnknownInput, in)
		}
		return &Stream{r: bufio.NewReader(in)}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownInput, input)
	}
}

// Offset returns the number of bytes consumed so far.
func (s *Stream) Offset() int64 {
	return s.off
}

// ReadByte consumes one byte. io.EOF is returned unchanged at end of input.
func (s *Stream) ReadByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	s.off++
	return b, nil
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.off += int64(n)
	return n, err
}

// ReadFull consumes exactly n bytes or fails with ErrTruncated.
func (s *Stream) ReadFull(n uint64) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if n > math.MaxInt64 {
		return nil, ErrValueRange
	}
	if n <= chunkedReadThreshold {
		buf := make([]byte, n)
		read, err := io.ReadFull(s.r, buf)
		s.off += int64(read)
		if err != nil {
			return nil, truncated(err)
		}
		return buf, nil
	}
	var buf bytes.Buffer
	read, err := io.CopyN(&buf, s.r, int64(n))
	s.off += read
	if err != nil {
		return nil, truncated(err)
	}
	return buf.Bytes(), nil
}

// Lookahead reports how many bytes sit in the read buffer, filling it first
// if it is empty. Nothing is consumed. Zero means the input is exhausted.
func (s *Stream) Lookahead() int {
	if s.r.Buffered() == 0 {
		_, _ = s.r.Peek(1)
	}
	return s.r.Buffered()
}

// isNilReader catches typed nil pointers such as (*bytes.Reader)(nil) that
// compare unequal to a nil interface.
func isNilReader(r io.Reader) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
