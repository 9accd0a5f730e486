package brine

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Little-endian integer plumbing shared by the fixed-size kinds. Width is
// carried explicitly because the value type alone does not distinguish,
// say, a u8 stored in a uint64 register.

func appendLE[T constraints.Unsigned](dst []byte, v T, width int) []byte {
	for i := 0; i < width; i++ {
		dst = append(dst, byte(v>>(8*i)))
	}
	return dst
}

func leUint[T constraints.Unsigned](b []byte) T {
	var v T
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | T(b[i])
	}
	return v
}

// appendFixed appends the tag and value bytes of a fixed-size value.
// It panics on kinds that are not fixed-size.
func appendFixed(dst []byte, v Value) []byte {
	dst = append(dst, byte(v.Type()))
	switch v := v.(type) {
	case Null:
		return dst
	case Bool:
		if v {
			return append(dst, 1)
		}
		return append(dst, 0)
	case U8:
		return append(dst, byte(v))
	case U16:
		return appendLE(dst, uint16(v), 2)
	case U32:
		return appendLE(dst, uint32(v), 4)
	case U64:
		return appendLE(dst, uint64(v), 8)
	case U128:
		return append(dst, v[:]...)
	case I8:
		return append(dst, byte(v))
	case I16:
		return appendLE(dst, uint16(v), 2)
	case I32:
		return appendLE(dst, uint32(v), 4)
	case I64:
		return appendLE(dst, uint64(v), 8)
	case I128:
		return append(dst, v[:]...)
	case F32:
		return appendLE(dst, math.Float32bits(float32(v)), 4)
	case F64:
		return appendLE(dst, math.Float64bits(float64(v)), 8)
	case Timestamp:
		return appendLE(dst, uint64(v), 8)
	default:
		panic("brine: appendFixed called with variable-size value")
	}
}

// decodeFixed reads the value bytes of a fixed-size kind whose tag has
// already been consumed.
func decodeFixed(c *cursor, t TypeID) (Value, error) {
	width, ok := fixedSize(t)
	if !ok {
		panic("brine: decodeFixed called with variable-size tag")
	}
	at := c.mark()
	b, err := c.readExact(width)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeNull:
		return Null{}, nil
	case TypeBool:
		switch b[0] {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		default:
			return nil, errAt(at, ErrInvalidBool, "0x%02x", b[0])
		}
	case TypeU8:
		return U8(b[0]), nil
	case TypeU16:
		return U16(leUint[uint16](b)), nil
	case TypeU32:
		return U32(leUint[uint32](b)), nil
	case TypeU64:
		return U64(leUint[uint64](b)), nil
	case TypeU128:
		var v U128
		copy(v[:], b)
		return v, nil
	case TypeI8:
		return I8(b[0]), nil
	case TypeI16:
		return I16(leUint[uint16](b)), nil
	case TypeI32:
		return I32(leUint[uint32](b)), nil
	case TypeI64:
		return I64(leUint[uint64](b)), nil
	case TypeI128:
		var v I128
		copy(v[:], b)
		return v, nil
	case TypeF32:
		return F32(math.Float32frombits(leUint[uint32](b))), nil
	case TypeF64:
		return F64(math.Float64frombits(leUint[uint64](b))), nil
	case TypeTimestamp:
		return Timestamp(leUint[uint64](b)), nil
	default:
		panic("unreachable")
	}
}
