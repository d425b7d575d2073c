package model

// ValueKind discriminates the concrete type held by a Value.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
	KindBool
)

// Value is a single typed field value. Absence of a field is expressed by
// omitting the key from a Document's Fields map, so an empty string stored
// under a key is distinct from a field that was never supplied.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// String returns a Value holding a string.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Int returns a Value holding a 64-bit integer.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Float returns a Value holding a 64-bit float.
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// Bool returns a Value holding a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Text returns the string content of the value, or "" for non-string kinds.
func (v Value) Text() string {
	if v.Kind == KindString {
		return v.Str
	}
	return ""
}

// Document is one input record: a caller-supplied unique id plus the values
// for the fields declared in the schema. Optional fields that are absent
// simply have no entry in Fields. Documents are immutable once built.
type Document struct {
	ID     uint64
	Fields map[string]Value
}

// Get returns the value stored under name and whether it is present.
func (d Document) Get(name string) (Value, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

// StoredFields is the subset of a document's values kept in the document
// store for rendering and filtering results.
type StoredFields map[string]Value
