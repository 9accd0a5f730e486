package brine

import "math"

// Value is the in-memory form of a single brine datum. The set of types
// implementing it is closed: Null, Bool, U8..U128, I8..I128, F32, F64,
// String, Array, Map, Struct, Enum, and Timestamp.
//
// Equal compares structurally. Map entry order and the iteration order of
// Struct fields carry no meaning; floats compare by bit pattern so that
// NaN values survive a round trip.
type Value interface {
	Type() TypeID
	Equal(Value) bool
}

// Null is the null value. It carries no payload bytes on the wire and is a
// value in its own right, not a per-field absence marker.
type Null struct{}

// Bool is a boolean value, encoded as a single 0 or 1 byte.
type Bool bool

// Fixed-width integers. All are encoded little-endian.
type (
	U8  uint8
	U16 uint16
	U32 uint32
	U64 uint64
	I8  int8
	I16 int16
	I32 int32
	I64 int64
)

// U128 and I128 are 128-bit integers kept as their little-endian wire
// bytes, since Go has no native 128-bit type.
type (
	U128 [16]byte
	I128 [16]byte
)

// F32 and F64 are IEEE-754 floats, encoded as their little-endian bit
// patterns.
type (
	F32 float32
	F64 float64
)

// String is a UTF-8 string. Encoders must only construct String values
// from valid UTF-8; decoders reject anything else.
type String string

// Array is an ordered sequence of values. Elements need not share a kind.
type Array []Value

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is a collection of key/value pairs. Keys compare by value, must be
// unique, and have no defined order.
type Map []MapEntry

// Struct maps stable numeric field identifiers to values. A field that is
// not set is simply absent from the map and from the wire.
type Struct map[uint64]Value

// Enum is one variant of a tagged union: a numeric variant identifier and
// an optional payload. A nil Payload means the variant carries no data.
type Enum struct {
	Variant uint64
	Payload Value
}

// Timestamp is an unsigned count of seconds since the Unix epoch.
type Timestamp uint64

func (Null) Type() TypeID      { return TypeNull }
func (Bool) Type() TypeID      { return TypeBool }
func (U8) Type() TypeID        { return TypeU8 }
func (U16) Type() TypeID       { return TypeU16 }
func (U32) Type() TypeID       { return TypeU32 }
func (U64) Type() TypeID       { return TypeU64 }
func (U128) Type() TypeID      { return TypeU128 }
func (I8) Type() TypeID        { return TypeI8 }
func (I16) Type() TypeID       { return TypeI16 }
func (I32) Type() TypeID       { return TypeI32 }
func (I64) Type() TypeID       { return TypeI64 }
func (I128) Type() TypeID      { return TypeI128 }
func (F32) Type() TypeID       { return TypeF32 }
func (F64) Type() TypeID       { return TypeF64 }
func (String) Type() TypeID    { return TypeString }
func (Array) Type() TypeID     { return TypeArray }
func (Map) Type() TypeID       { return TypeMap }
func (Struct) Type() TypeID    { return TypeStruct }
func (Enum) Type() TypeID      { return TypeEnum }
func (Timestamp) Type() TypeID { return TypeTimestamp }

func (v Null) Equal(o Value) bool {
	_, ok := o.(Null)
	return ok
}

func (v Bool) Equal(o Value) bool { w, ok := o.(Bool); return ok && v == w }
func (v U8) Equal(o Value) bool   { w, ok := o.(U8); return ok && v == w }
func (v U16) Equal(o Value) bool  { w, ok := o.(U16); return ok && v == w }
func (v U32) Equal(o Value) bool  { w, ok := o.(U32); return ok && v == w }
func (v U64) Equal(o Value) bool  { w, ok := o.(U64); return ok && v == w }
func (v U128) Equal(o Value) bool { w, ok := o.(U128); return ok && v == w }
func (v I8) Equal(o Value) bool   { w, ok := o.(I8); return ok && v == w }
func (v I16) Equal(o Value) bool  { w, ok := o.(I16); return ok && v == w }
func (v I32) Equal(o Value) bool  { w, ok := o.(I32); return ok && v == w }
func (v I64) Equal(o Value) bool  { w, ok := o.(I64); return ok && v == w }
func (v I128) Equal(o Value) bool { w, ok := o.(I128); return ok && v == w }

func (v F32) Equal(o Value) bool {
	w, ok := o.(F32)
	return ok && math.Float32bits(float32(v)) == math.Float32bits(float32(w))
}

func (v F64) Equal(o Value) bool {
	w, ok := o.(F64)
	return ok && math.Float64bits(float64(v)) == math.Float64bits(float64(w))
}

func (v String) Equal(o Value) bool    { w, ok := o.(String); return ok && v == w }
func (v Timestamp) Equal(o Value) bool { w, ok := o.(Timestamp); return ok && v == w }

func (v Array) Equal(o Value) bool {
	w, ok := o.(Array)
	if !ok || len(v) != len(w) {
		return false
	}
	for i := range v {
		if !v[i].Equal(w[i]) {
			return false
		}
	}
	return true
}

// Equal matches entries by key regardless of order. Keys are unique within
// a well-formed Map, so a pairwise scan is unambiguous.
func (v Map) Equal(o Value) bool {
	w, ok := o.(Map)
	if !ok || len(v) != len(w) {
		return false
	}
	for _, e := range v {
		found := false
		for _, f := range w {
			if e.Key.Equal(f.Key) {
				found = e.Value.Equal(f.Value)
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (v Struct) Equal(o Value) bool {
	w, ok := o.(Struct)
	if !ok || len(v) != len(w) {
		return false
	}
	for id, val := range v {
		other, ok := w[id]
		if !ok || !val.Equal(other) {
			return false
		}
	}
	return true
}

func (v Enum) Equal(o Value) bool {
	w, ok := o.(Enum)
	if !ok || v.Variant != w.Variant {
		return false
	}
	if v.Payload == nil || w.Payload == nil {
		return v.Payload == nil && w.Payload == nil
	}
	return v.Payload.Equal(w.Payload)
}
