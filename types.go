package brine

import "fmt"

// TypeID is the one-byte wire tag identifying the kind of an encoded value.
// The top bit is never set in a valid tag.
type TypeID byte

const (
	TypeNull      TypeID = 0x00
	TypeBool      TypeID = 0x01
	TypeU8        TypeID = 0x02
	TypeU16       TypeID = 0x03
	TypeU32       TypeID = 0x04
	TypeU64       TypeID = 0x05
	TypeU128      TypeID = 0x06
	TypeI8        TypeID = 0x07
	TypeI16       TypeID = 0x08
	TypeI32       TypeID = 0x09
	TypeI64       TypeID = 0x0A
	TypeI128      TypeID = 0x0B
	TypeF32       TypeID = 0x0C
	TypeF64       TypeID = 0x0D
	TypeString    TypeID = 0x0E
	TypeArray     TypeID = 0x0F
	TypeMap       TypeID = 0x10
	TypeStruct    TypeID = 0x11
	TypeEnum      TypeID = 0x12
	TypeTimestamp TypeID = 0x13
)

var typeNames = [...]string{
	TypeNull:      "null",
	TypeBool:      "bool",
	TypeU8:        "u8",
	TypeU16:       "u16",
	TypeU32:       "u32",
	TypeU64:       "u64",
	TypeU128:      "u128",
	TypeI8:        "i8",
	TypeI16:       "i16",
	TypeI32:       "i32",
	TypeI64:       "i64",
	TypeI128:      "i128",
	TypeF32:       "f32",
	TypeF64:       "f64",
	TypeString:    "string",
	TypeArray:     "array",
	TypeMap:       "map",
	TypeStruct:    "struct",
	TypeEnum:      "enum",
	TypeTimestamp: "timestamp",
}

func (t TypeID) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("TypeID(0x%02x)", byte(t))
}

// Valid reports whether t is a known wire tag.
func (t TypeID) Valid() bool {
	return t <= TypeTimestamp
}

// fixedSize returns the number of value bytes following the tag for
// fixed-size kinds. ok is false for variable-size and unknown tags.
func fixedSize(t TypeID) (n int, ok bool) {
	switch t {
	case TypeNull:
		return 0, true
	case TypeBool, TypeU8, TypeI8:
		return 1, true
	case TypeU16, TypeI16:
		return 2, true
	case TypeU32, TypeI32, TypeF32:
		return 4, true
	case TypeU64, TypeI64, TypeF64, TypeTimestamp:
		return 8, true
	case TypeU128, TypeI128:
		return 16, true
	default:
		return 0, false
	}
}
