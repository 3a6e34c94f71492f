package frame

import (
	"github.com/danmuck/starwire/internal/protocol/codec"
)

// Envelope adapts the envelope to codec.Codec. Encode accepts a Packet,
// *Packet, map[string]any or *codec.Record with "id" and "data" entries;
// Decode returns a Packet.
type Envelope struct {
	Limits Limits
}

func NewEnvelope() Envelope {
	return Envelope{Limits: DefaultLimits()}
}

func (e Envelope) Decode(s *codec.Stream, ctx *codec.Context) (any, error) {
	return Decode(s, ctx, e.Limits)
}

func (e Envelope) Encode(v any, ctx *codec.Context) ([]byte, error) {
	p, err := packetOf(v)
	if err != nil {
		return nil, err
	}
	return Encode(p, ctx), nil
}

func packetOf(v any) (Packet, error) {
	var get func(string) (any, bool)
	switch in := v.(type) {
	case Packet:
		return in, nil
	case *Packet:
		if in == nil {
			return Packet{}, ErrMissingID
		}
		return *in, nil
	case *codec.Record:
		get = in.Get
	case map[string]any:
		get = func(k string) (any, bool) {
			x, ok := in[k]
			return x, ok
		}
	default:
		return Packet{}, &codec.TypeError{Codec: "Envelope", Value: v}
	}
	rawID, ok := get("id")
	if !ok {
		return Packet{}, ErrMissingID
	}
	id, err := codec.ToUint64(rawID)
	if err != nil {
		return Packet{}, err
	}
	if id > 0xff {
		return Packet{}, codec.ErrValueRange
	}
	data, _ := get("data")
	return NewPacket(uint8(id), data)
}
