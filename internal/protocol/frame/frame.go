package frame

import (
	"errors"
	"io"

	"github.com/danmuck/starwire/internal/protocol/codec"
)

var (
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrMissingID       = errors.New("frame: packet id missing")
)

// Packet is one envelope: a packet id and its opaque payload. The wire form
// is [1B id][SignedVLQ length][payload]; a negative length marks a
// compressed payload.
type Packet struct {
	ID   uint8
	Data []byte
}

// Limits constrains frame decode memory use.
type Limits struct {
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 8 * 1024 * 1024,
	}
}

// NewPacket builds a packet from []byte or text data.
func NewPacket(id uint8, data any) (Packet, error) {
	b, err := codec.ToBytes(data)
	if err != nil {
		return Packet{}, err
	}
	return Packet{ID: id, Data: b}, nil
}

// Encode writes the envelope. The length is negated when ctx marks the
// payload as compressed.
func Encode(p Packet, ctx *codec.Context) []byte {
	n := int64(len(p.Data))
	if ctx.Compressed() {
		n = -n
	}
	out := make([]byte, 0, 1+10+len(p.Data))
	out = append(out, p.ID)
	out = codec.AppendSignedVLQ(out, n)
	return append(out, p.Data...)
}

// Decode reads one envelope. It is the inferred inverse of Encode: a
// negative length sets the compressed flag on ctx.
func Decode(s *codec.Stream, ctx *codec.Context, limits Limits) (Packet, error) {
	id, err := s.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Packet{}, codec.ErrTruncated
		}
		return Packet{}, err
	}
	n, err := codec.ReadSignedVLQ(s)
	if err != nil {
		return Packet{}, err
	}
	compressed := n < 0
	size := uint64(n)
	if compressed {
		size = uint64(-(n + 1)) + 1
	}
	ctx.SetCompressed(compressed)
	if size > limits.MaxPayloadBytes {
		return Packet{}, ErrPayloadTooLarge
	}
	data, err := s.ReadFull(size)
	if err != nil {
		return Packet{}, err
	}
	return Packet{ID: id, Data: data}, nil
}

func WriteFrame(w io.Writer, p Packet, ctx *codec.Context) error {
	_, err := w.Write(Encode(p, ctx))
	return err
}

// ReadFrame decodes one envelope from r. r is wrapped in a fresh buffer that
// may read past the frame; use Decode on a shared *codec.Stream to read
// consecutive frames.
func ReadFrame(r io.Reader, ctx *codec.Context, limits Limits) (Packet, error) {
	s, err := codec.NewStream(r)
	if err != nil {
		return Packet{}, err
	}
	return Decode(s, ctx, limits)
}
