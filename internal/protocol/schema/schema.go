package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/starwire/internal/observability"
	"github.com/danmuck/starwire/internal/protocol/codec"
	"github.com/rs/zerolog/log"
)

// Packet type IDs. They document the wire but are not checked on decode;
// 11 is shared by the client and server disconnect messages.
const (
	MsgProtocolResponse        uint8 = 0
	MsgConnectSuccess          uint8 = 2
	MsgConnectFailure          uint8 = 3
	MsgChatReceived            uint8 = 5
	MsgProtocolRequest         uint8 = 9
	MsgClientConnect           uint8 = 10
	MsgClientDisconnectRequest uint8 = 11
	MsgServerDisconnect        uint8 = 11
	MsgPlayerWarp              uint8 = 13
	MsgChatSent                uint8 = 15
	MsgWorldStart              uint8 = 18
	MsgWorldStop               uint8 = 19
	MsgGiveItem                uint8 = 26
)

var ErrUnknownMessage = errors.New("schema: unknown message")

// Message binds a packet type ID to its composite record layout.
type Message struct {
	ID     uint8
	Record *codec.Struct
}

func (m Message) Name() string {
	return m.Record.Name()
}

// Decode reads one message from input ([]byte, string, io.Reader or
// *codec.Stream) with a fresh context.
func (m Message) Decode(input any) (*codec.Record, error) {
	s, err := codec.NewStream(input)
	if err != nil {
		return nil, err
	}
	return m.DecodeStream(s, codec.NewContext())
}

// DecodeStream reads one message from s, sharing ctx with the caller.
func (m Message) DecodeStream(s *codec.Stream, ctx *codec.Context) (*codec.Record, error) {
	start := time.Now()
	before := s.Offset()
	rec, err := m.Record.DecodeRecord(s, ctx)
	n := s.Offset() - before
	observability.RecordDecode(m.Name(), n, time.Since(start), err == nil)
	if err != nil {
		log.Debug().Str("schema", m.Name()).Uint8("id", m.ID).Int64("bytes", n).Err(err).Msg("schema.Decode failed")
		return nil, err
	}
	log.Debug().Str("schema", m.Name()).Uint8("id", m.ID).Int64("bytes", n).Msg("schema.Decode ok")
	return rec, nil
}

// Encode writes v (*codec.Record, map[string]any or nil) with a fresh
// context.
func (m Message) Encode(v any) ([]byte, error) {
	return m.EncodeContext(v, codec.NewContext())
}

func (m Message) EncodeContext(v any, ctx *codec.Context) ([]byte, error) {
	start := time.Now()
	out, err := m.Record.Encode(v, ctx)
	observability.RecordEncode(m.Name(), int64(len(out)), time.Since(start), err == nil)
	if err != nil {
		log.Debug().Str("schema", m.Name()).Uint8("id", m.ID).Err(err).Msg("schema.Encode failed")
		return nil, err
	}
	return out, nil
}

// Lookup finds a message by record name.
func Lookup(name string) (Message, bool) {
	m, ok := byName[name]
	return m, ok
}

// ByID returns every message documented under id, in catalog order.
func ByID(id uint8) []Message {
	var out []Message
	for _, m := range catalog {
		if m.ID == id {
			out = append(out, m)
		}
	}
	return out
}

// All returns the catalog in declaration order.
func All() []Message {
	out := make([]Message, len(catalog))
	copy(out, catalog)
	return out
}

func Decode(name string, input any) (*codec.Record, error) {
	m, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, name)
	}
	return m.Decode(input)
}

func Encode(name string, v any) ([]byte, error) {
	m, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, name)
	}
	return m.Encode(v)
}

var byName = indexCatalog(catalog)

func indexCatalog(msgs []Message) map[string]Message {
	out := make(map[string]Message, len(msgs))
	for _, m := range msgs {
		if _, dup := out[m.Name()]; dup {
			panic("schema: duplicate message " + m.Name())
		}
		out[m.Name()] = m
	}
	return out
}
