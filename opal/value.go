package opal

import (
	"fmt"
	"strconv"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is the interpreter's runtime value. The zero value is nil.
type Value struct {
	kind Kind

	intVal    int64
	floatVal  float64
	stringVal string
	boolVal   bool
	objectVal *Instance
}

func NewNil() Value               { return Value{} }
func NewInt(v int64) Value        { return Value{kind: KindInt, intVal: v} }
func NewFloat(v float64) Value    { return Value{kind: KindFloat, floatVal: v} }
func NewString(v string) Value    { return Value{kind: KindString, stringVal: v} }
func NewBool(v bool) Value        { return Value{kind: KindBool, boolVal: v} }
func NewObject(o *Instance) Value { return Value{kind: KindObject, objectVal: o} }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNil() bool       { return v.kind == KindNil }
func (v Value) Int() int64        { return v.intVal }
func (v Value) Float() float64    { return v.floatVal }
func (v Value) Bool() bool        { return v.boolVal }
func (v Value) Object() *Instance { return v.objectVal }
func (v Value) IsNumeric() bool   { return v.kind == KindInt || v.kind == KindFloat }

// AsFloat widens an int to float; callers must check IsNumeric first.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.intVal)
	}
	return v.floatVal
}

// Truthy follows the usual falsiness rules: nil, false, zero of either
// numeric kind, and the empty string are false; everything else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.boolVal
	case KindInt:
		return v.intVal != 0
	case KindFloat:
		return v.floatVal != 0
	case KindString:
		return v.stringVal != ""
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindInt:
		return strconv.FormatInt(v.intVal, 10)
	case KindFloat:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case KindString:
		return v.stringVal
	case KindBool:
		return strconv.FormatBool(v.boolVal)
	case KindObject:
		return fmt.Sprintf("<%s object>", v.objectVal.Class)
	}
	return "unknown"
}
