package codec

// Record is an insertion-ordered name to value mapping. Composite records
// decode into it and the per-call Context is built on it.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// RecordOf builds a record from alternating name, value arguments.
// It panics on an odd argument count or a non-string name.
func RecordOf(pairs ...any) *Record {
	if len(pairs)%2 != 0 {
		panic("codec: RecordOf needs name/value pairs")
	}
	r := NewRecord()
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("codec: RecordOf name must be a string")
		}
		r.Set(name, pairs[i+1])
	}
	return r
}

// Set stores v under name. A new name is appended to the key order; an
// existing name keeps its position.
func (r *Record) Set(name string, v any) {
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
}

func (r *Record) Get(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[name]
	return v, ok
}

func (r *Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns names in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Range calls fn for each entry in order until fn returns false.
func (r *Record) Range(fn func(name string, v any) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (r *Record) Clone() *Record {
	out := NewRecord()
	r.Range(func(name string, v any) bool {
		out.Set(name, v)
		return true
	})
	return out
}

// Map returns the entries as a plain map, converting nested records too.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, r.Len())
	r.Range(func(name string, v any) bool {
		if nested, ok := v.(*Record); ok {
			out[name] = nested.Map()
			return true
		}
		out[name] = v
		return true
	})
	return out
}

// Context is the mutable state shared by sibling fields during one top-level
// decode or encode call. A nil *Context is valid and holds nothing.
type Context struct {
	values *Record
}

// KeyCompressed marks an envelope payload as compressed.
const KeyCompressed = "compressed"

func NewContext() *Context {
	return &Context{values: NewRecord()}
}

func (c *Context) Set(name string, v any) {
	if c == nil {
		return
	}
	c.values.Set(name, v)
}

func (c *Context) Get(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.values.Get(name)
}

// Compressed reports whether the compressed flag is set to true.
func (c *Context) Compressed() bool {
	v, ok := c.Get(KeyCompressed)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (c *Context) SetCompressed(on bool) {
	c.Set(KeyCompressed, on)
}

// Snapshot returns a copy of the context entries.
func (c *Context) Snapshot() *Record {
	if c == nil {
		return NewRecord()
	}
	return c.values.Clone()
}
