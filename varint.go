package brine

import "encoding/binary"

// Lengths, counts, field identifiers, and variant identifiers are all
// unsigned LEB128 varints. Encoders emit the minimal form; decoders accept
// any form that fits in 64 bits.

// appendUvarint appends the minimal LEB128 encoding of v.
func appendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// readUvarint decodes an unsigned varint from the cursor. A varint that
// would not fit in 64 bits fails with ErrLengthExceeded.
func readUvarint(c *cursor) (uint64, error) {
	start := c.mark()
	var v uint64
	for shift := 0; shift < 64; shift += 7 {
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		if shift == 63 && b > 1 {
			c.rewind(start)
			return 0, errAt(start, ErrLengthExceeded, "varint overflows 64 bits")
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, nil
		}
	}
	c.rewind(start)
	return 0, errAt(start, ErrLengthExceeded, "varint overflows 64 bits")
}

// Enum variant identifiers carry their payload presence in the low bit, so
// a decoder with no schema for the enum can still walk past it.

func appendVariantID(dst []byte, variant uint64, hasPayload bool) []byte {
	tagged := variant << 1
	if hasPayload {
		tagged |= 1
	}
	return appendUvarint(dst, tagged)
}

func readVariantID(c *cursor) (variant uint64, hasPayload bool, err error) {
	tagged, err := readUvarint(c)
	if err != nil {
		return 0, false, err
	}
	return tagged >> 1, tagged&1 == 1, nil
}
