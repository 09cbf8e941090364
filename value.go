package restbq

import (
	"strconv"

	"github.com/valyala/fastjson"
)

// Kind is a kind of a cell value discovered while scanning rows.
type Kind int

// Kinds of values.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindComplex:
		return "complex"
	}
	return "unknown"
}

// Value is a tagged cell value.
// Text holds the string for KindString, the JSON literal for KindNumber,
// "true" or "false" for KindBool and compact JSON for KindComplex.
type Value struct {
	Kind Kind
	Text string
}

// Null is the null value.
var Null = Value{Kind: KindNull}

// StringValue builds a string value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// NumberValue builds a number value from a JSON number literal.
func NumberValue(lit string) Value {
	return Value{Kind: KindNumber, Text: lit}
}

// BoolValue builds a bool value.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Text: strconv.FormatBool(b)}
}

// ComplexValue builds a value holding an array or an object as JSON text.
func ComplexValue(json string) Value {
	return Value{Kind: KindComplex, Text: json}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// isInteger reports whether a number literal fits into int64.
func (v Value) isInteger() bool {
	if v.Kind != KindNumber {
		return false
	}
	_, err := strconv.ParseInt(v.Text, 10, 64)
	return err == nil
}

func valueOf(v *fastjson.Value) Value {
	switch v.Type() {
	case fastjson.TypeNull:
		return Null
	case fastjson.TypeString:
		return StringValue(string(v.GetStringBytes()))
	case fastjson.TypeNumber:
		return NumberValue(v.String())
	case fastjson.TypeTrue:
		return BoolValue(true)
	case fastjson.TypeFalse:
		return BoolValue(false)
	default:
		return ComplexValue(v.String())
	}
}
