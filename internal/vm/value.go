package vm

import "strconv"

// Kind discriminates the value representations.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is a runtime value. Heap-backed values carry an Object reference.
type Value struct {
	kind   Kind
	number float64
	object Object
}

// Nil returns the nil value.
func Nil() Value {
	return Value{kind: KindNil}
}

// Bool returns a boolean value.
func Bool(v bool) Value {
	value := Value{kind: KindBool}
	if v {
		value.number = 1
	}
	return value
}

// Number returns a numeric value.
func Number(v float64) Value {
	return Value{kind: KindNumber, number: v}
}

// FromObject wraps a heap object.
func FromObject(object Object) Value {
	return Value{kind: KindObject, object: object}
}

// Kind returns the value's representation kind.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether the value is nil.
func (v Value) IsNil() bool { return v.kind == KindNil }

// IsNumber reports whether the value is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// AsNumber returns the numeric payload.
func (v Value) AsNumber() float64 { return v.number }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.number != 0 }

// AsObject returns the object payload, or nil for non-object values.
func (v Value) AsObject() Object {
	if v.kind != KindObject {
		return nil
	}
	return v.object
}

// IsFalsey reports Lox truthiness: nil and false are falsey, everything
// else is truthy.
func (v Value) IsFalsey() bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.AsBool()
	default:
		return false
	}
}

// Equals implements Lox equality. Strings compare by content, other
// objects by identity.
func (v Value) Equals(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.AsBool() == other.AsBool()
	case KindNumber:
		return v.number == other.number
	default:
		a, aOK := v.object.(*String)
		b, bOK := other.object.(*String)
		if aOK && bOK {
			return a.Value == b.Value
		}
		return v.object == other.object
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	default:
		return v.object.String()
	}
}

// asString unwraps a string object value.
func asString(v Value) (*String, bool) {
	s, ok := v.AsObject().(*String)
	return s, ok
}
