package codec

import (
	"reflect"

	"github.com/rs/zerolog/log"
)

// RepeatCodec decodes one element type until the stream's lookahead buffer
// is empty or stops shrinking between elements. This is a heuristic and not
// length- or sentinel-terminated: a reader that refills its buffer to the
// same size after an element ends the sequence early.
type RepeatCodec struct {
	elem   Codec
	strict bool
	max    int
}

// RepeatOption configures a RepeatCodec.
type RepeatOption func(*RepeatCodec)

// StrictRepeat propagates element decode errors instead of returning the
// elements decoded so far.
func StrictRepeat() RepeatOption {
	return func(r *RepeatCodec) { r.strict = true }
}

// MaxElements stops decoding after n elements. n <= 0 means no cap.
func MaxElements(n int) RepeatOption {
	return func(r *RepeatCodec) { r.max = n }
}

// Repeat builds a repetition combinator over elem. By default an element
// failure is swallowed and the partial result returned.
func Repeat(elem Codec, opts ...RepeatOption) *RepeatCodec {
	r := &RepeatCodec{elem: elem}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RepeatCodec) Decode(s *Stream, ctx *Context) (any, error) {
	out := make([]any, 0)
	last := -1
	for r.max <= 0 || len(out) < r.max {
		n := s.Lookahead()
		if n == 0 || n == last {
			break
		}
		v, err := r.elem.Decode(s, ctx)
		if err != nil {
			if r.strict {
				return nil, err
			}
			log.Debug().Int("elements", len(out)).Err(err).Msg("codec repeat stopped on element error")
			break
		}
		out = append(out, v)
		last = n
	}
	return out, nil
}

// Encode concatenates element encodings. v may be nil or any slice.
func (r *RepeatCodec) Encode(v any, ctx *Context) ([]byte, error) {
	out := []byte{}
	if v == nil {
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &TypeError{Codec: "Repeat", Value: v}
	}
	for i := 0; i < rv.Len(); i++ {
		b, err := r.elem.Encode(rv.Index(i).Interface(), ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
