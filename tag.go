package tracekit

import "strconv"

// TagKind identifies the variant held by a TagValue.
type TagKind int

const (
	// KindString marks a string tag value.
	KindString TagKind = iota
	// KindBool marks a boolean tag value.
	KindBool
	// KindInt marks a 64-bit integer tag value.
	KindInt
	// KindFloat marks a 64-bit float tag value.
	KindFloat
)

// TagValue is a closed variant over the value types a tag or log field may
// carry: string, bool, int64 and float64. The zero value is the empty
// string.
type TagValue struct {
	s    string
	i    int64
	f    float64
	b    bool
	kind TagKind
}

// StringValue returns a TagValue holding a string.
func StringValue(v string) TagValue { return TagValue{kind: KindString, s: v} }

// BoolValue returns a TagValue holding a bool.
func BoolValue(v bool) TagValue { return TagValue{kind: KindBool, b: v} }

// IntValue returns a TagValue holding an int64.
func IntValue(v int64) TagValue { return TagValue{kind: KindInt, i: v} }

// FloatValue returns a TagValue holding a float64.
func FloatValue(v float64) TagValue { return TagValue{kind: KindFloat, f: v} }

// Kind returns the variant held by v.
func (v TagValue) Kind() TagKind { return v.kind }

// AsString returns the string value and whether v holds one.
func (v TagValue) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsBool returns the bool value and whether v holds one.
func (v TagValue) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the int64 value and whether v holds one.
func (v TagValue) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float64 value and whether v holds one.
func (v TagValue) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// String formats the value for display regardless of kind.
func (v TagValue) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return v.s
	}
}
