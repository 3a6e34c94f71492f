package codec

// Codec decodes one value from a stream and encodes one value to bytes.
// Encode must accept nil and give it a defined wire form.
type Codec interface {
	Decode(s *Stream, ctx *Context) (any, error)
	Encode(v any, ctx *Context) ([]byte, error)
}

// DecodeFrom normalizes input into a fresh Stream and decodes one value with
// a fresh Context.
func DecodeFrom(c Codec, input any) (any, error) {
	s, err := NewStream(input)
	if err != nil {
		return nil, err
	}
	return c.Decode(s, NewContext())
}

// EncodeValue encodes v with a fresh Context.
func EncodeValue(c Codec, v any) ([]byte, error) {
	return c.Encode(v, NewContext())
}
