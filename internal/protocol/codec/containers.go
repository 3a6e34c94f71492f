package codec

import (
	"encoding/hex"
	"unicode/utf8"

	"github.com/google/uuid"
)

const uuidLen = 16

var (
	// ByteArray is a VLQ length followed by that many raw bytes.
	ByteArray Codec = byteArrayCodec{}
	// String is a ByteArray holding UTF-8. Invalid UTF-8 decodes to the raw
	// []byte instead of failing.
	String Codec = stringCodec{}
	// StringSet is a VLQ count followed by that many Strings.
	StringSet Codec = stringSetCodec{}
	// UUID decodes 16 raw bytes to lowercase hex text. Encode writes a
	// presence flag and then the 16 bytes when a value is given.
	UUID Codec = uuidCodec{}
)

type byteArrayCodec struct{}

func (byteArrayCodec) Decode(s *Stream, _ *Context) (any, error) {
	return readByteArray(s)
}

func (byteArrayCodec) Encode(v any, _ *Context) ([]byte, error) {
	b, err := ToBytes(v)
	if err != nil {
		return nil, err
	}
	return appendByteArray(nil, b), nil
}

func readByteArray(s *Stream) ([]byte, error) {
	n, err := ReadVLQ(s)
	if err != nil {
		return nil, err
	}
	return s.ReadFull(n)
}

func appendByteArray(dst, b []byte) []byte {
	dst = AppendVLQ(dst, uint64(len(b)))
	return append(dst, b...)
}

type stringCodec struct{}

func (stringCodec) Decode(s *Stream, _ *Context) (any, error) {
	return readText(s)
}

func (stringCodec) Encode(v any, _ *Context) ([]byte, error) {
	b, err := ToBytes(v)
	if err != nil {
		return nil, &TypeError{Codec: "String", Value: v}
	}
	return appendByteArray(nil, b), nil
}

// readText returns a string, or the raw bytes when they are not UTF-8.
func readText(s *Stream) (any, error) {
	b, err := readByteArray(s)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return b, nil
	}
	return string(b), nil
}

type stringSetCodec struct{}

func (stringSetCodec) Decode(s *Stream, _ *Context) (any, error) {
	n, err := ReadVLQ(s)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, capHint(n))
	for i := uint64(0); i < n; i++ {
		// An element needs at least its length byte. Stop a large count
		// from yielding empty strings past the end of input.
		if s.Lookahead() == 0 {
			return nil, ErrTruncated
		}
		v, err := readText(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (stringSetCodec) Encode(v any, _ *Context) ([]byte, error) {
	var items []any
	switch set := v.(type) {
	case nil:
	case []string:
		items = make([]any, len(set))
		for i, s := range set {
			items[i] = s
		}
	case []any:
		items = set
	default:
		return nil, &TypeError{Codec: "StringSet", Value: v}
	}
	out := AppendVLQ(nil, uint64(len(items)))
	for _, item := range items {
		b, err := ToBytes(item)
		if err != nil {
			return nil, &TypeError{Codec: "StringSet", Value: item}
		}
		out = appendByteArray(out, b)
	}
	return out, nil
}

type uuidCodec struct{}

func (uuidCodec) Decode(s *Stream, _ *Context) (any, error) {
	b, err := s.ReadFull(uuidLen)
	if err != nil {
		return nil, err
	}
	return hex.EncodeToString(b), nil
}

func (uuidCodec) Encode(v any, _ *Context) ([]byte, error) {
	id, present, err := uuidBytes(v)
	if err != nil {
		return nil, err
	}
	if !present {
		return []byte{0}, nil
	}
	return append([]byte{1}, id[:]...), nil
}

// uuidBytes resolves an optional UUID input. Empty input means absent.
func uuidBytes(v any) (uuid.UUID, bool, error) {
	switch id := v.(type) {
	case nil:
		return uuid.Nil, false, nil
	case uuid.UUID:
		return id, true, nil
	case [uuidLen]byte:
		return uuid.UUID(id), true, nil
	case []byte:
		if len(id) == 0 {
			return uuid.Nil, false, nil
		}
		parsed, err := uuid.FromBytes(id)
		if err != nil {
			return uuid.Nil, false, ErrValueRange
		}
		return parsed, true, nil
	case string:
		if id == "" {
			return uuid.Nil, false, nil
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, false, ErrValueRange
		}
		return parsed, true, nil
	default:
		return uuid.Nil, false, &TypeError{Codec: "UUID", Value: v}
	}
}

// capHint bounds a slice preallocation taken from an untrusted count.
func capHint(n uint64) int {
	if n > 1024 {
		return 1024
	}
	return int(n)
}
