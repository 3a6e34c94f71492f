package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/danmuck/starwire/internal/config"
	"github.com/danmuck/starwire/internal/protocol/codec"
	"github.com/danmuck/starwire/internal/protocol/schema"
	jsoniter "github.com/json-iterator/go"
)

var (
	compactJSON = jsoniter.ConfigCompatibleWithStandardLibrary
	prettyJSON  = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		IndentionStep:          2,
	}.Froze()
	inputJSON = jsoniter.Config{
		UseNumber:   true,
		SortMapKeys: true,
	}.Froze()
)

// render writes v as JSON. Records and variant objects keep their field
// order and byte slices are written as hex strings.
func render(w io.Writer, output string, v any) error {
	api := compactJSON
	if output == config.OutputPretty {
		api = prettyJSON
	}
	stream := api.BorrowStream(w)
	defer api.ReturnStream(stream)

	writeValue(stream, v)
	stream.WriteRaw("\n")
	if stream.Error != nil {
		return fmt.Errorf("render: %w", stream.Error)
	}
	return stream.Flush()
}

func writeValue(stream *jsoniter.Stream, v any) {
	switch x := v.(type) {
	case *codec.Record:
		stream.WriteObjectStart()
		first := true
		x.Range(func(name string, value any) bool {
			if !first {
				stream.WriteMore()
			}
			first = false
			stream.WriteObjectField(name)
			writeValue(stream, value)
			return true
		})
		stream.WriteObjectEnd()
	case codec.Variant:
		writeVariant(stream, x)
	case codec.WorldChunks:
		stream.WriteObjectStart()
		stream.WriteObjectField("count")
		stream.WriteUint64(x.Count)
		stream.WriteMore()
		stream.WriteObjectField("entries")
		stream.WriteArrayStart()
		for i, e := range x.Entries {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, codec.RecordOf(
				"index", e.Index,
				"keyLen", e.KeyLen,
				"key", e.Key,
				"separator", e.Separator,
				"valueLen", e.ValueLen,
				"value", e.Value,
			))
		}
		stream.WriteArrayEnd()
		stream.WriteObjectEnd()
	case []byte:
		stream.WriteString(hex.EncodeToString(x))
	case []any:
		stream.WriteArrayStart()
		for i, item := range x {
			if i > 0 {
				stream.WriteMore()
			}
			writeValue(stream, item)
		}
		stream.WriteArrayEnd()
	default:
		stream.WriteVal(v)
	}
}

func writeVariant(stream *jsoniter.Stream, v codec.Variant) {
	switch v.Kind {
	case codec.VariantArray:
		stream.WriteArrayStart()
		for i, item := range v.Array {
			if i > 0 {
				stream.WriteMore()
			}
			writeVariant(stream, item)
		}
		stream.WriteArrayEnd()
	case codec.VariantObject:
		stream.WriteObjectStart()
		for i, f := range v.Object {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(f.Key)
			writeVariant(stream, f.Value)
		}
		stream.WriteObjectEnd()
	default:
		writeValue(stream, v.Interface())
	}
}

// encodeJSON encodes a JSON object as message m. Byte array fields take the
// hex form decode renders them in.
func encodeJSON(m schema.Message, raw string) ([]byte, error) {
	value, err := parseJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := hexByteFields(m.Record, value); err != nil {
		return nil, err
	}
	return m.Encode(value)
}

// hexByteFields replaces hex strings under ByteArray fields with their
// bytes, walking nested composites.
func hexByteFields(rec *codec.Struct, in map[string]any) error {
	for _, name := range rec.Fields() {
		v, ok := in[name]
		if !ok {
			continue
		}
		sub, _ := rec.FieldCodec(name)
		if nested, ok := sub.(*codec.Struct); ok {
			if m, ok := v.(map[string]any); ok {
				if err := hexByteFields(nested, m); err != nil {
					return fmt.Errorf("%s.%w", name, err)
				}
			}
			continue
		}
		text, ok := v.(string)
		if !ok || sub != codec.ByteArray {
			continue
		}
		b, err := hex.DecodeString(text)
		if err != nil {
			return fmt.Errorf("%s: byte arrays are hex: %w", name, err)
		}
		in[name] = b
	}
	return nil
}

// parseJSON reads a JSON object for encoding. Numbers stay json.Number so
// 64-bit integers survive the trip.
func parseJSON(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, fmt.Errorf("missing --json")
	}
	var out map[string]any
	dec := inputJSON.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse --json: %w", err)
	}
	return out, nil
}
