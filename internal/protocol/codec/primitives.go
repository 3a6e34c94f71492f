package codec

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	UBInt16  Codec = uint16Codec{}
	SBInt16  Codec = int16Codec{}
	UBInt32  Codec = uint32Codec{}
	SBInt32  Codec = int32Codec{}
	BFloat32 Codec = float32Codec{}
	BDouble  Codec = float64Codec{}
	Byte     Codec = byteCodec{}
	// Flag decodes true whenever a byte was present, whatever its value, and
	// false only at end of input.
	Flag Codec = flagCodec{}
)

type uint16Codec struct{}

func (uint16Codec) Decode(s *Stream, _ *Context) (any, error) {
	b, err := s.ReadFull(2)
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (uint16Codec) Encode(v any, _ *Context) ([]byte, error) {
	n, err := ToInt64(v)
	if err != nil {
		return nil, err
	}
	if err := inRange(n, 0, math.MaxUint16); err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint16(nil, uint16(n)), nil
}

type int16Codec struct{}

func (int16Codec) Decode(s *Stream, _ *Context) (any, error) {
	b, err := s.ReadFull(2)
	if err != nil {
		return nil, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (int16Codec) Encode(v any, _ *Context) ([]byte, error) {
	n, err := ToInt64(v)
	if err != nil {
		return nil, err
	}
	if err := inRange(n, math.MinInt16, math.MaxInt16); err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint16(nil, uint16(int16(n))), nil
}

type uint32Codec struct{}

func (uint32Codec) Decode(s *Stream, _ *Context) (any, error) {
	b, err := s.ReadFull(4)
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (uint32Codec) Encode(v any, _ *Context) ([]byte, error) {
	n, err := ToInt64(v)
	if err != nil {
		return nil, err
	}
	if err := inRange(n, 0, math.MaxUint32); err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint32(nil, uint32(n)), nil
}

type int32Codec struct{}

func (int32Codec) Decode(s *Stream, _ *Context) (any, error) {
	b, err := s.ReadFull(4)
	if err != nil {
		return nil, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (int32Codec) Encode(v any, _ *Context) ([]byte, error) {
	n, err := ToInt64(v)
	if err != nil {
		return nil, err
	}
	if err := inRange(n, math.MinInt32, math.MaxInt32); err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint32(nil, uint32(int32(n))), nil
}

type float32Codec struct{}

func (float32Codec) Decode(s *Stream, _ *Context) (any, error) {
	b, err := s.ReadFull(4)
	if err != nil {
		return nil, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

func (float32Codec) Encode(v any, _ *Context) ([]byte, error) {
	f, err := ToFloat64(v)
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint32(nil, math.Float32bits(float32(f))), nil
}

type float64Codec struct{}

func (float64Codec) Decode(s *Stream, _ *Context) (any, error) {
	return readDouble(s)
}

func (float64Codec) Encode(v any, _ *Context) ([]byte, error) {
	f, err := ToFloat64(v)
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(f)), nil
}

func readDouble(s *Stream) (float64, error) {
	b, err := s.ReadFull(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

type byteCodec struct{}

func (byteCodec) Decode(s *Stream, _ *Context) (any, error) {
	b, err := s.ReadByte()
	if err != nil {
		return nil, truncated(err)
	}
	return b, nil
}

func (byteCodec) Encode(v any, _ *Context) ([]byte, error) {
	n, err := ToInt64(v)
	if err != nil {
		return nil, err
	}
	if err := inRange(n, 0, math.MaxUint8); err != nil {
		return nil, err
	}
	return []byte{byte(n)}, nil
}

type flagCodec struct{}

func (flagCodec) Decode(s *Stream, _ *Context) (any, error) {
	return readFlag(s)
}

func (flagCodec) Encode(v any, _ *Context) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return []byte{0}, nil
	case bool:
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	default:
		return nil, &TypeError{Codec: "Flag", Value: v}
	}
}

func readFlag(s *Stream) (bool, error) {
	if _, err := s.ReadByte(); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
