package codec

import (
	"errors"
	"io"
	"math"
)

var (
	// VLQ is the unsigned big-endian base-128 integer. Decodes to uint64.
	VLQ Codec = vlqCodec{}
	// SignedVLQ is the zigzag-mapped VLQ. Decodes to int64.
	SignedVLQ Codec = signedVLQCodec{}
)

type vlqCodec struct{}

func (vlqCodec) Decode(s *Stream, _ *Context) (any, error) {
	return ReadVLQ(s)
}

func (vlqCodec) Encode(v any, _ *Context) ([]byte, error) {
	n, err := ToUint64(v)
	if err != nil {
		return nil, err
	}
	return AppendVLQ(nil, n), nil
}

type signedVLQCodec struct{}

func (signedVLQCodec) Decode(s *Stream, _ *Context) (any, error) {
	return ReadSignedVLQ(s)
}

func (signedVLQCodec) Encode(v any, _ *Context) ([]byte, error) {
	n, err := ToInt64(v)
	if err != nil {
		return nil, err
	}
	return AppendSignedVLQ(nil, n), nil
}

// ReadVLQ reads groups until one has the high bit clear. Input ending
// mid-sequence yields the value accumulated so far.
func ReadVLQ(s *Stream) (uint64, error) {
	var v uint64
	for {
		b, err := s.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return v, nil
			}
			return v, err
		}
		if v > math.MaxUint64>>7 {
			return 0, ErrVLQOverflow
		}
		v = v<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// AppendVLQ appends the minimal encoding of v.
func AppendVLQ(dst []byte, v uint64) []byte {
	var tmp [10]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7f)
	v >>= 7
	for v > 0 {
		i--
		tmp[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	return append(dst, tmp[i:]...)
}

func ReadSignedVLQ(s *Stream) (int64, error) {
	u, err := ReadVLQ(s)
	if err != nil {
		return 0, err
	}
	return unzigzag(u), nil
}

func AppendSignedVLQ(dst []byte, v int64) []byte {
	return AppendVLQ(dst, zigzag(v))
}

// zigzag maps 0,-1,1,-2,... to 0,1,2,3,...
func zigzag(v int64) uint64 {
	if v < 0 {
		return uint64(-(v+1))*2 + 1
	}
	return uint64(v) * 2
}

func unzigzag(u uint64) int64 {
	if u&1 == 0 {
		return int64(u >> 1)
	}
	return -int64(u>>1) - 1
}
