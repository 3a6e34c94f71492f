package codec

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"sort"
)

// VariantKind is the wire tag of a Variant.
type VariantKind uint8

const (
	VariantNull   VariantKind = 1
	VariantDouble VariantKind = 2
	VariantBool   VariantKind = 3
	VariantInt    VariantKind = 4
	VariantString VariantKind = 5
	VariantArray  VariantKind = 6
	VariantObject VariantKind = 7
)

func (k VariantKind) String() string {
	switch k {
	case VariantNull:
		return "null"
	case VariantDouble:
		return "double"
	case VariantBool:
		return "bool"
	case VariantInt:
		return "int"
	case VariantString:
		return "string"
	case VariantArray:
		return "array"
	case VariantObject:
		return "object"
	default:
		return "unknown"
	}
}

// Variant is the recursive dynamically typed value. Only the slot matching
// Kind is meaningful.
type Variant struct {
	Kind   VariantKind
	Double float64
	Bool   bool
	Int    int64
	String string
	// Raw holds a string payload that was not valid UTF-8. String is empty
	// when Raw is set.
	Raw    []byte
	Array  []Variant
	Object []VariantField
}

// VariantField is one object entry. Object entries keep wire order.
type VariantField struct {
	Key   string
	Value Variant
	// RawKey is set when the key bytes were not valid UTF-8. Key still
	// holds them unchanged.
	RawKey bool
}

// VariantCodec decodes and encodes Variant values.
var VariantCodec Codec = variantCodec{}

func NullVariant() Variant { return Variant{Kind: VariantNull} }
func DoubleVariant(f float64) Variant { return Variant{Kind: VariantDouble, Double: f} }
func BoolVariant(b bool) Variant { return Variant{Kind: VariantBool, Bool: b} }
func IntVariant(i int64) Variant { return Variant{Kind: VariantInt, Int: i} }
func StringVariant(s string) Variant { return Variant{Kind: VariantString, String: s} }
func ArrayVariant(items ...Variant) Variant {
	return Variant{Kind: VariantArray, Array: items}
}
func ObjectVariant(fields ...VariantField) Variant {
	return Variant{Kind: VariantObject, Object: fields}
}

// Get returns the value under key for an object variant.
func (v Variant) Get(key string) (Variant, bool) {
	if v.Kind != VariantObject {
		return Variant{}, false
	}
	for _, f := range v.Object {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Variant{}, false
}

// Interface converts v to plain Go values: nil, float64, bool, int64,
// string ([]byte for Raw), []any and map[string]any.
func (v Variant) Interface() any {
	switch v.Kind {
	case VariantDouble:
		return v.Double
	case VariantBool:
		return v.Bool
	case VariantInt:
		return v.Int
	case VariantString:
		if v.Raw != nil {
			return v.Raw
		}
		return v.String
	case VariantArray:
		out := make([]any, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.Interface()
		}
		return out
	case VariantObject:
		out := make(map[string]any, len(v.Object))
		for _, f := range v.Object {
			out[f.Key] = f.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// VariantOf converts a plain Go value to a Variant. Map keys are sorted so
// the encoding is deterministic; a *Record keeps its own order.
func VariantOf(in any) (Variant, error) {
	switch x := in.(type) {
	case nil:
		return NullVariant(), nil
	case Variant:
		return x, nil
	case *Variant:
		if x == nil {
			return NullVariant(), nil
		}
		return *x, nil
	case bool:
		return BoolVariant(x), nil
	case float32:
		return DoubleVariant(float64(x)), nil
	case float64:
		return DoubleVariant(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntVariant(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Variant{}, ErrValueRange
		}
		return DoubleVariant(f), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := ToInt64(x)
		if err != nil {
			return Variant{}, err
		}
		return IntVariant(i), nil
	case string:
		return StringVariant(x), nil
	case []byte:
		return Variant{Kind: VariantString, Raw: x}, nil
	case []Variant:
		return ArrayVariant(x...), nil
	case []any:
		items := make([]Variant, 0, len(x))
		for _, item := range x {
			conv, err := VariantOf(item)
			if err != nil {
				return Variant{}, err
			}
			items = append(items, conv)
		}
		return ArrayVariant(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]VariantField, 0, len(x))
		for _, k := range keys {
			conv, err := VariantOf(x[k])
			if err != nil {
				return Variant{}, err
			}
			fields = append(fields, VariantField{Key: k, Value: conv})
		}
		return ObjectVariant(fields...), nil
	case *Record:
		fields := make([]VariantField, 0, x.Len())
		var convErr error
		x.Range(func(k string, item any) bool {
			conv, err := VariantOf(item)
			if err != nil {
				convErr = err
				return false
			}
			fields = append(fields, VariantField{Key: k, Value: conv})
			return true
		})
		if convErr != nil {
			return Variant{}, convErr
		}
		return ObjectVariant(fields...), nil
	default:
		return Variant{}, &TypeError{Codec: "Variant", Value: in}
	}
}

type variantCodec struct{}

func (variantCodec) Decode(s *Stream, _ *Context) (any, error) {
	return ReadVariant(s)
}

func (variantCodec) Encode(v any, _ *Context) ([]byte, error) {
	conv, err := VariantOf(v)
	if err != nil {
		return nil, err
	}
	return AppendVariant(nil, conv)
}

// MaxVariantDepth bounds array and object nesting on decode.
const MaxVariantDepth = 512

// ReadVariant decodes one tagged value. A tag outside 1..7 fails with
// *UnknownTagError; nesting past MaxVariantDepth fails with ErrVariantDepth.
func ReadVariant(s *Stream) (Variant, error) {
	return readVariant(s, 0)
}

func readVariant(s *Stream, depth int) (Variant, error) {
	tag, err := s.ReadByte()
	if err != nil {
		return Variant{}, truncated(err)
	}
	switch VariantKind(tag) {
	case VariantNull:
		return NullVariant(), nil
	case VariantDouble:
		f, err := readDouble(s)
		if err != nil {
			return Variant{}, err
		}
		return DoubleVariant(f), nil
	case VariantBool:
		b, err := readFlag(s)
		if err != nil {
			return Variant{}, err
		}
		return BoolVariant(b), nil
	case VariantInt:
		i, err := ReadSignedVLQ(s)
		if err != nil {
			return Variant{}, err
		}
		return IntVariant(i), nil
	case VariantString:
		return readStringVariant(s)
	case VariantArray:
		if depth >= MaxVariantDepth {
			return Variant{}, ErrVariantDepth
		}
		n, err := ReadVLQ(s)
		if err != nil {
			return Variant{}, err
		}
		items := make([]Variant, 0, capHint(n))
		for i := uint64(0); i < n; i++ {
			item, err := readVariant(s, depth+1)
			if err != nil {
				return Variant{}, err
			}
			items = append(items, item)
		}
		return Variant{Kind: VariantArray, Array: items}, nil
	case VariantObject:
		if depth >= MaxVariantDepth {
			return Variant{}, ErrVariantDepth
		}
		n, err := ReadVLQ(s)
		if err != nil {
			return Variant{}, err
		}
		fields := make([]VariantField, 0, capHint(n))
		for i := uint64(0); i < n; i++ {
			key, err := readText(s)
			if err != nil {
				return Variant{}, err
			}
			value, err := readVariant(s, depth+1)
			if err != nil {
				return Variant{}, err
			}
			k, raw := textKey(key)
			fields = append(fields, VariantField{Key: k, Value: value, RawKey: raw})
		}
		return Variant{Kind: VariantObject, Object: fields}, nil
	default:
		return Variant{}, &UnknownTagError{Tag: tag}
	}
}

// textKey turns a decoded String into an object key. Invalid UTF-8 keeps
// its exact bytes and reports raw.
func textKey(text any) (key string, raw bool) {
	if b, ok := text.([]byte); ok {
		return string(b), true
	}
	return text.(string), false
}

func readStringVariant(s *Stream) (Variant, error) {
	text, err := readText(s)
	if err != nil {
		return Variant{}, err
	}
	if raw, ok := text.([]byte); ok {
		return Variant{Kind: VariantString, Raw: raw}, nil
	}
	return StringVariant(text.(string)), nil
}

// AppendVariant appends the tagged encoding of v.
func AppendVariant(dst []byte, v Variant) ([]byte, error) {
	dst = append(dst, byte(v.Kind))
	switch v.Kind {
	case VariantNull:
		return dst, nil
	case VariantDouble:
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(v.Double)), nil
	case VariantBool:
		if v.Bool {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case VariantInt:
		return AppendSignedVLQ(dst, v.Int), nil
	case VariantString:
		if v.Raw != nil {
			return appendByteArray(dst, v.Raw), nil
		}
		return appendByteArray(dst, []byte(v.String)), nil
	case VariantArray:
		dst = AppendVLQ(dst, uint64(len(v.Array)))
		for _, item := range v.Array {
			var err error
			if dst, err = AppendVariant(dst, item); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case VariantObject:
		dst = AppendVLQ(dst, uint64(len(v.Object)))
		for _, f := range v.Object {
			dst = appendByteArray(dst, []byte(f.Key))
			var err error
			if dst, err = AppendVariant(dst, f.Value); err != nil {
				return nil, err
			}
		}
		return dst, nil
	default:
		return nil, &UnknownTagError{Tag: uint8(v.Kind)}
	}
}
