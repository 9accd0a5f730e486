package brine

import (
	"unicode/utf8"
	"unsafe"
)

// DefaultMaxDepth bounds nesting of arrays, maps, structs, and enum
// payloads when DecodeOptions.MaxDepth is zero. It exists to turn
// adversarial deeply-nested input into an error instead of stack
// exhaustion.
const DefaultMaxDepth = 64

// DecodeOptions configures a decode. The zero value decodes with the
// default depth limit, no size cap, owned strings, and exact consumption.
type DecodeOptions struct {
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int

	// MaxBytes rejects inputs longer than this many bytes when positive.
	// It is the caller's size cap for untrusted input.
	MaxBytes int

	// BorrowStrings makes decoded String values alias the input buffer
	// instead of copying it. Borrowed strings are invalidated if the
	// caller mutates or frees the buffer; leave this off unless the
	// buffer outlives every decoded value.
	BorrowStrings bool

	// AllowTrailing permits unconsumed bytes after a complete value.
	// By default trailing bytes fail with ErrTrailingBytes.
	AllowTrailing bool

	// Schema is the reader's expected shape. Nil accepts any well-formed
	// value; see Schema for what a concrete schema adds.
	Schema Schema
}

// FromBytes decodes a single value with default options: schemaless,
// owned strings, exact consumption.
func FromBytes(data []byte) (Value, error) {
	return DecodeOptions{}.FromBytes(data)
}

// FromBytes decodes a single value from data according to the options.
// Decoding is all or nothing; on error no partial value is returned.
func (o DecodeOptions) FromBytes(data []byte) (Value, error) {
	if o.MaxBytes > 0 && len(data) > o.MaxBytes {
		return nil, errAt(0, ErrLengthExceeded, "input is %d bytes, cap is %d", len(data), o.MaxBytes)
	}
	c := newCursor(data, o.MaxDepth)
	v, err := decodeValue(c, o.Schema, o.BorrowStrings)
	if err != nil {
		return nil, err
	}
	if !o.AllowTrailing && c.remaining() > 0 {
		return nil, errAt(c.pos, ErrTrailingBytes, "%d bytes remain", c.remaining())
	}
	return v, nil
}

// DecodeStruct decodes a single struct value against a reader schema and
// returns its identifier-to-value mapping. Identifiers outside the schema
// are decoded and discarded; identifiers in the schema but not on the wire
// are absent from the result. This is the decode half of the static-table
// boundary; callers project the map into their own typed fields.
func DecodeStruct(data []byte, schema StructSchema) (map[uint64]Value, error) {
	v, err := DecodeOptions{Schema: schema}.FromBytes(data)
	if err != nil {
		return nil, err
	}
	return v.(Struct), nil
}

// DecodeEnum decodes a single enum value against a reader schema. The
// payload is nil for bare variants.
func DecodeEnum(data []byte, schema EnumSchema) (variant uint64, payload Value, err error) {
	v, err := DecodeOptions{Schema: schema}.FromBytes(data)
	if err != nil {
		return 0, nil, err
	}
	e := v.(Enum)
	return e.Variant, e.Payload, nil
}

func decodeValue(c *cursor, s Schema, borrow bool) (Value, error) {
	at := c.mark()
	tagByte, err := c.readByte()
	if err != nil {
		return nil, err
	}
	tag := TypeID(tagByte)
	if !tag.Valid() {
		return nil, errAt(at, ErrUnknownType, "0x%02x", tagByte)
	}
	if want, ok := schemaTag(s); ok && tag != want {
		return nil, errAt(at, ErrTypeMismatch, "expected %v, got %v", want, tag)
	}
	if _, ok := fixedSize(tag); ok {
		return decodeFixed(c, tag)
	}
	switch tag {
	case TypeString:
		return decodeString(c, borrow)
	case TypeArray:
		return decodeArray(c, s, borrow)
	case TypeMap:
		return decodeMap(c, s, borrow)
	case TypeStruct:
		return decodeStructBody(c, s, borrow)
	default: // TypeEnum
		return decodeEnumBody(c, at, s, borrow)
	}
}

func decodeString(c *cursor, borrow bool) (Value, error) {
	n, err := readUvarint(c)
	if err != nil {
		return nil, err
	}
	if n > uint64(c.remaining()) {
		return nil, errAt(c.pos, ErrTruncated, "string length %d exceeds remaining %d", n, c.remaining())
	}
	at := c.mark()
	b, err := c.readExact(int(n))
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, errAt(at, ErrInvalidUTF8, "")
	}
	if borrow && len(b) > 0 {
		// Zero-copy view into the caller's buffer.
		return String(unsafe.String(&b[0], len(b))), nil
	}
	return String(b), nil
}

func decodeArray(c *cursor, s Schema, borrow bool) (Value, error) {
	count, err := readUvarint(c)
	if err != nil {
		return nil, err
	}
	// Every element occupies at least its tag byte, so a count beyond the
	// remaining bytes can never be satisfied. Checking up front keeps a
	// hostile count from sizing an allocation.
	if count > uint64(c.remaining()) {
		return nil, errAt(c.pos, ErrTruncated, "element count %d exceeds remaining %d bytes", count, c.remaining())
	}
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()
	var elem Schema
	if as, ok := s.(ArraySchema); ok {
		elem = as.Elem
	}
	out := make(Array, 0, count)
	for i := uint64(0); i < count; i++ {
		v, err := decodeValue(c, elem, borrow)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeMap(c *cursor, s Schema, borrow bool) (Value, error) {
	count, err := readUvarint(c)
	if err != nil {
		return nil, err
	}
	if count > uint64(c.remaining()/2) {
		return nil, errAt(c.pos, ErrTruncated, "pair count %d exceeds remaining %d bytes", count, c.remaining())
	}
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()
	var ks, vs Schema
	if ms, ok := s.(MapSchema); ok {
		ks, vs = ms.Key, ms.Val
	}
	out := make(Map, 0, count)
	for i := uint64(0); i < count; i++ {
		keyAt := c.mark()
		key, err := decodeValue(c, ks, borrow)
		if err != nil {
			return nil, err
		}
		for _, e := range out {
			if e.Key.Equal(key) {
				return nil, errAt(keyAt, ErrDuplicateKey, "")
			}
		}
		val, err := decodeValue(c, vs, borrow)
		if err != nil {
			return nil, err
		}
		out = append(out, MapEntry{Key: key, Value: val})
	}
	return out, nil
}

func decodeStructBody(c *cursor, s Schema, borrow bool) (Value, error) {
	count, err := readUvarint(c)
	if err != nil {
		return nil, err
	}
	// Each entry is at least an identifier byte plus a value tag byte.
	if count > uint64(c.remaining()/2) {
		return nil, errAt(c.pos, ErrTruncated, "entry count %d exceeds remaining %d bytes", count, c.remaining())
	}
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()
	ss, hasSchema := s.(StructSchema)
	out := make(Struct, count)
	seen := make(map[uint64]struct{}, count)
	for i := uint64(0); i < count; i++ {
		idAt := c.mark()
		id, err := readUvarint(c)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			return nil, errAt(idAt, ErrDuplicateField, "field %d", id)
		}
		seen[id] = struct{}{}
		if hasSchema {
			fieldSchema, known := ss.Fields[id]
			// Unknown fields are fully decoded so their bytes are framed
			// correctly, then dropped.
			v, err := decodeValue(c, fieldSchema, borrow)
			if err != nil {
				return nil, err
			}
			if known {
				out[id] = v
			}
			continue
		}
		v, err := decodeValue(c, nil, borrow)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

func decodeEnumBody(c *cursor, tagAt int, s Schema, borrow bool) (Value, error) {
	variant, hasPayload, err := readVariantID(c)
	if err != nil {
		return nil, err
	}
	var payloadSchema Schema
	if es, ok := s.(EnumSchema); ok {
		declared, known := es.Variants[variant]
		if !known {
			return nil, errAt(tagAt, ErrUnknownVariant, "variant %d", variant)
		}
		if hasPayload && declared == nil {
			return nil, errAt(tagAt, ErrEnumPayload, "variant %d declared bare but carries a payload", variant)
		}
		if !hasPayload && declared != nil {
			return nil, errAt(tagAt, ErrEnumPayload, "variant %d declared with payload but carries none", variant)
		}
		payloadSchema = declared
	}
	if !hasPayload {
		return Enum{Variant: variant}, nil
	}
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()
	payload, err := decodeValue(c, payloadSchema, borrow)
	if err != nil {
		return nil, err
	}
	return Enum{Variant: variant, Payload: payload}, nil
}
