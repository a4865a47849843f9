package olang

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTNull ValueTag = iota // no payload
	VTBool                 // bool
	VTNum                  // float64
	VTStr                  // string
	VTFun                  // *FunctionExpression
)

var valueTagNames = [...]string{
	VTNull: "null",
	VTBool: "boolean",
	VTNum:  "number",
	VTStr:  "string",
	VTFun:  "function",
}

func (t ValueTag) String() string {
	if t >= 0 && int(t) < len(valueTagNames) {
		return valueTagNames[t]
	}
	return fmt.Sprintf("ValueTag(%d)", int(t))
}

// Value is the runtime carrier. Tag selects which Go type Data holds.
//
// A function value is just its *FunctionExpression. It captures no scope:
// free names in the body are resolved through the caller's chain when the
// function is called.
type Value struct {
	Tag  ValueTag
	Data any
}

// Null is the null Value. The zero Value is also null.
var Null = Value{Tag: VTNull}

func Bool(b bool) Value                  { return Value{Tag: VTBool, Data: b} }
func Num(f float64) Value                { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value                 { return Value{Tag: VTStr, Data: s} }
func FunVal(fn *FunctionExpression) Value { return Value{Tag: VTFun, Data: fn} }

// AsNum returns the number and true when v is a number.
func (v Value) AsNum() (float64, bool) {
	f, ok := v.Data.(float64)
	return f, ok && v.Tag == VTNum
}

// AsFun returns the function node and true when v is a function.
func (v Value) AsFun() (*FunctionExpression, bool) {
	fn, ok := v.Data.(*FunctionExpression)
	return fn, ok && v.Tag == VTFun
}

// String renders v the way the REPL shows it.
func (v Value) String() string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTNum:
		return formatNumber(v.Data.(float64))
	case VTStr:
		return strconv.Quote(v.Data.(string))
	case VTFun:
		return Print(v.Data.(*FunctionExpression))
	default:
		panic(fmt.Sprintf("olang: unhandled value tag %d", v.Tag))
	}
}

// Equal compares two values. Functions are equal when they are the same node.
func (v Value) Equal(o Value) bool {
	if v.Tag != o.Tag {
		return false
	}
	switch v.Tag {
	case VTNull:
		return true
	case VTBool:
		return v.Data.(bool) == o.Data.(bool)
	case VTNum:
		return v.Data.(float64) == o.Data.(float64)
	case VTStr:
		return v.Data.(string) == o.Data.(string)
	case VTFun:
		return v.Data.(*FunctionExpression) == o.Data.(*FunctionExpression)
	default:
		panic(fmt.Sprintf("olang: unhandled value tag %d", v.Tag))
	}
}

// export is the plain form used by MarshalJSON and MarshalYAML. Numbers that
// JSON cannot carry (NaN, ±Inf) become strings.
func (v Value) export() any {
	switch v.Tag {
	case VTNull:
		return nil
	case VTBool:
		return v.Data.(bool)
	case VTNum:
		f := v.Data.(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return formatNumber(f)
		}
		return f
	case VTStr:
		return v.Data.(string)
	case VTFun:
		return map[string]any{"function": Print(v.Data.(*FunctionExpression))}
	default:
		panic(fmt.Sprintf("olang: unhandled value tag %d", v.Tag))
	}
}

func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.export()) }

func (v Value) MarshalYAML() (any, error) { return v.export(), nil }

// formatNumber prints integral values without an exponent up to 1e21 and
// falls back to the shortest %g form otherwise.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
