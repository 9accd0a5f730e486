package brine

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// MaxVariant is the largest encodable enum variant identifier. The top bit
// of the 64-bit space carries the payload presence flag.
const MaxVariant = 1<<63 - 1

// ToBytes encodes a value to its wire form. It never fails for values that
// conform to the value model; a String holding invalid UTF-8, a nil Value,
// or a variant identifier above MaxVariant is a defect in the caller and
// panics rather than producing bytes no decoder will accept.
func ToBytes(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the wire form of v to dst and returns the extended
// slice.
func AppendValue(dst []byte, v Value) []byte {
	switch v := v.(type) {
	case nil:
		panic("brine: cannot encode nil Value")
	case String:
		if !utf8.ValidString(string(v)) {
			panic("brine: String value holds invalid UTF-8")
		}
		dst = append(dst, byte(TypeString))
		dst = appendUvarint(dst, uint64(len(v)))
		return append(dst, v...)
	case Array:
		dst = append(dst, byte(TypeArray))
		dst = appendUvarint(dst, uint64(len(v)))
		for _, elem := range v {
			dst = AppendValue(dst, elem)
		}
		return dst
	case Map:
		dst = append(dst, byte(TypeMap))
		dst = appendUvarint(dst, uint64(len(v)))
		for _, e := range v {
			dst = AppendValue(dst, e.Key)
			dst = AppendValue(dst, e.Value)
		}
		return dst
	case Struct:
		return appendStruct(dst, v)
	case Enum:
		if v.Variant > MaxVariant {
			panic(fmt.Sprintf("brine: variant id %d exceeds MaxVariant", v.Variant))
		}
		dst = append(dst, byte(TypeEnum))
		dst = appendVariantID(dst, v.Variant, v.Payload != nil)
		if v.Payload != nil {
			dst = AppendValue(dst, v.Payload)
		}
		return dst
	default:
		return appendFixed(dst, v)
	}
}

// appendStruct emits present fields in ascending identifier order. Order
// carries no meaning on the wire; sorting just makes output reproducible.
func appendStruct(dst []byte, s Struct) []byte {
	dst = append(dst, byte(TypeStruct))
	dst = appendUvarint(dst, uint64(len(s)))
	ids := make([]uint64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		dst = appendUvarint(dst, id)
		dst = AppendValue(dst, s[id])
	}
	return dst
}

// FieldEntry is one identifier/value pair supplied by a static field table
// when encoding a struct without materializing a Struct map.
type FieldEntry struct {
	ID    uint64
	Value Value
}

// EncodeStruct encodes the present fields of a struct from a field table.
// Entries with a nil Value are treated as absent and emit nothing.
func EncodeStruct(fields []FieldEntry) []byte {
	present := make([]FieldEntry, 0, len(fields))
	for _, f := range fields {
		if f.Value != nil {
			present = append(present, f)
		}
	}
	slices.SortFunc(present, func(a, b FieldEntry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	dst := []byte{byte(TypeStruct)}
	dst = appendUvarint(dst, uint64(len(present)))
	for _, f := range present {
		dst = appendUvarint(dst, f.ID)
		dst = AppendValue(dst, f.Value)
	}
	return dst
}

// EncodeEnum encodes a single enum value. A nil payload encodes a bare
// variant.
func EncodeEnum(variant uint64, payload Value) []byte {
	return ToBytes(Enum{Variant: variant, Payload: payload})
}
