package codec

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

type field struct {
	name  string
	codec Codec
}

// Struct is a composite record: an ordered list of named sub-codecs. Wire
// order is the order fields were added.
type Struct struct {
	name   string
	fields []field
	index  map[string]struct{}
}

// Composite starts a composite record definition.
func Composite(name string) *Struct {
	return &Struct{name: name, index: make(map[string]struct{})}
}

// Field appends a named sub-codec and returns the receiver for chaining.
// Adding a name twice or a nil codec panics; definitions are static.
func (c *Struct) Field(name string, sub Codec) *Struct {
	if sub == nil {
		panic(fmt.Sprintf("codec: %s.%s has no codec", c.name, name))
	}
	if _, dup := c.index[name]; dup {
		panic(fmt.Sprintf("codec: %s.%s declared twice", c.name, name))
	}
	c.index[name] = struct{}{}
	c.fields = append(c.fields, field{name: name, codec: sub})
	return c
}

func (c *Struct) Name() string {
	return c.name
}

// Fields returns field names in wire order.
func (c *Struct) Fields() []string {
	out := make([]string, len(c.fields))
	for i, f := range c.fields {
		out[i] = f.name
	}
	return out
}

// FieldCodec returns the sub-codec declared under name.
func (c *Struct) FieldCodec(name string) (Codec, bool) {
	for _, f := range c.fields {
		if f.name == name {
			return f.codec, true
		}
	}
	return nil, false
}

func (c *Struct) Decode(s *Stream, ctx *Context) (any, error) {
	return c.DecodeRecord(s, ctx)
}

// DecodeRecord runs each field in order, storing every value in the result
// and in ctx. The first failure aborts with a *FieldError holding the
// partial record.
func (c *Struct) DecodeRecord(s *Stream, ctx *Context) (*Record, error) {
	rec := NewRecord()
	for _, f := range c.fields {
		v, err := f.codec.Decode(s, ctx)
		if err != nil {
			log.Debug().
				Str("record", c.name).
				Str("field", f.name).
				Int64("offset", s.Offset()).
				Interface("partial", rec.Map()).
				Err(err).
				Msg("codec decode failed")
			return nil, &FieldError{Record: c.name, Field: f.name, Partial: rec, Err: err}
		}
		rec.Set(f.name, v)
		ctx.Set(f.name, v)
	}
	return rec, nil
}

// Encode accepts a *Record, a map[string]any or nil. A missing field is
// encoded from nil.
func (c *Struct) Encode(v any, ctx *Context) ([]byte, error) {
	lookup, err := fieldSource(c.name, v)
	if err != nil {
		return nil, err
	}
	var out []byte
	done := NewRecord()
	for _, f := range c.fields {
		value, _ := lookup(f.name)
		b, err := f.codec.Encode(value, ctx)
		if err != nil {
			log.Debug().
				Str("record", c.name).
				Str("field", f.name).
				Interface("context", ctx.Snapshot().Map()).
				Err(err).
				Msg("codec encode failed")
			return nil, &FieldError{Record: c.name, Field: f.name, Partial: done, Err: err}
		}
		out = append(out, b...)
		done.Set(f.name, value)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func fieldSource(name string, v any) (func(string) (any, bool), error) {
	switch src := v.(type) {
	case nil:
		return func(string) (any, bool) { return nil, false }, nil
	case *Record:
		return src.Get, nil
	case map[string]any:
		return func(k string) (any, bool) {
			value, ok := src[k]
			return value, ok
		}, nil
	default:
		return nil, &TypeError{Codec: name, Value: v}
	}
}
