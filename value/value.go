// Package value defines the neutral value tree shared by the decoder's
// output and the encoder's input. It intentionally matches what a JSON
// document can express: integers, floats, strings, ordered lists and
// keyed records. Nothing in this package knows about MAT-file framing.
package value

import "fmt"

// Kind identifies which alternative of the Value sum type is populated.
type Kind int

// The alternatives of the Value sum type.
const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindList
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Value is a tagged union over Integer, Float, String, List and Record.
// The zero Value is the integer 0.
type Value struct {
	kind   Kind
	i      int64
	f      float64
	s      string
	list   []Value
	record *Record
}

// Int returns an Integer value.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float returns a Float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a String value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a List value. items is owned by the returned Value.
func List(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Rec returns a Record value.
func Rec(r *Record) Value { return Value{kind: KindRecord, record: r} }

// Kind reports which alternative is populated.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload and true if v is an Integer.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

// Float returns the float payload and true if v is a Float.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// Str returns the string payload and true if v is a String.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// ListItems returns the list payload and true if v is a List.
func (v Value) ListItems() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Record returns the record payload and true if v is a Record.
func (v Value) Record() (*Record, bool) {
	if v.kind != KindRecord {
		return nil, false
	}
	return v.record, true
}

// IsNumber reports whether v is an Integer or Float.
func (v Value) IsNumber() bool { return v.kind == KindInteger || v.kind == KindFloat }

// AsFloat64 widens an Integer or Float value to float64. It panics if v
// is not a number; callers should check IsNumber first.
func (v Value) AsFloat64() float64 {
	switch v.kind {
	case KindInteger:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		panic(fmt.Sprintf("value: AsFloat64 on non-numeric kind %s", v.kind))
	}
}

// Equal reports structural equality, comparing floats bitwise so that
// NaN compares equal to itself as required by the round-trip property.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInteger:
		return a.i == b.i
	case KindFloat:
		return floatBits(a.f) == floatBits(b.f)
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		return a.record.Equal(b.record)
	default:
		return false
	}
}
