package codec

// WorldChunksTable is a VLQ record count followed by records of
// keyLen, key, one separator byte, valueLen, value.
var WorldChunksTable Codec = worldChunksCodec{}

// WorldChunk is one decoded table record.
type WorldChunk struct {
	Index     int
	KeyLen    uint64
	Key       []byte
	Separator uint8
	ValueLen  uint64
	Value     []byte
}

// WorldChunks is a decoded table. Count is the count read from the wire.
type WorldChunks struct {
	Count   uint64
	Entries []WorldChunk
}

type worldChunksCodec struct{}

func (worldChunksCodec) Decode(s *Stream, _ *Context) (any, error) {
	count, err := ReadVLQ(s)
	if err != nil {
		return nil, err
	}
	table := WorldChunks{Count: count, Entries: make([]WorldChunk, 0, capHint(count))}
	for i := uint64(0); i < count; i++ {
		entry, err := readWorldChunk(s, int(i))
		if err != nil {
			return nil, err
		}
		table.Entries = append(table.Entries, entry)
	}
	return table, nil
}

func readWorldChunk(s *Stream, index int) (WorldChunk, error) {
	entry := WorldChunk{Index: index}
	var err error
	if entry.KeyLen, err = ReadVLQ(s); err != nil {
		return WorldChunk{}, err
	}
	if entry.Key, err = s.ReadFull(entry.KeyLen); err != nil {
		return WorldChunk{}, err
	}
	if entry.Separator, err = s.ReadByte(); err != nil {
		return WorldChunk{}, truncated(err)
	}
	if entry.ValueLen, err = ReadVLQ(s); err != nil {
		return WorldChunk{}, err
	}
	if entry.Value, err = s.ReadFull(entry.ValueLen); err != nil {
		return WorldChunk{}, err
	}
	return entry, nil
}

// Encode writes the structural inverse of Decode. Lengths and the record
// count come from the blobs themselves, not the stored KeyLen/ValueLen/Count.
func (worldChunksCodec) Encode(v any, _ *Context) ([]byte, error) {
	var table WorldChunks
	switch t := v.(type) {
	case nil:
	case WorldChunks:
		table = t
	case *WorldChunks:
		if t != nil {
			table = *t
		}
	default:
		return nil, &TypeError{Codec: "WorldChunksTable", Value: v}
	}
	out := AppendVLQ(nil, uint64(len(table.Entries)))
	for _, entry := range table.Entries {
		out = appendByteArray(out, entry.Key)
		out = append(out, entry.Separator)
		out = appendByteArray(out, entry.Value)
	}
	return out, nil
}
