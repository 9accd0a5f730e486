// Package brine implements a binary Type-Length-Value (TLV) serialization
// format built for compact wire encodings and explicit schema evolution.
//
// A brine value is one of a closed set of kinds: Null, Bool, the fixed-width
// integers U8..U128 and I8..I128, F32, F64, Timestamp, String, Array, Map,
// Struct, and Enum. Every encoded value starts with a one-byte type tag.
// Fixed-size kinds are followed by their value bytes in little-endian order.
// Variable-size kinds are followed by an unsigned LEB128 count:
//
//	String  tag, byte length, UTF-8 bytes
//	Array   tag, element count, elements
//	Map     tag, pair count, key/value pairs
//	Struct  tag, entry count, (field id, value) entries
//	Enum    tag, tagged variant id, optional payload
//
// Struct field identifiers are stable numeric keys assigned once per field.
// Writers omit absent fields entirely; readers skip identifiers they do not
// recognize and report identifiers they expect but do not find as absent.
// That asymmetry is the whole compatibility story: old readers tolerate new
// fields, and new readers tolerate old data.
//
// Enums take the opposite stance. The variant identifier is encoded as
// (id << 1) | payloadFlag so that any decoder can walk past an enum it has
// no schema for, but a reader that declares its known variants fails with
// ErrUnknownVariant the moment it sees one it does not recognize. There is
// no best-effort path for enum data.
//
// Encoding and decoding are pure functions of their inputs. The package
// keeps no mutable state between calls apart from a concurrent cache of
// reflection tables, so all entry points are safe for concurrent use.
//
// Two encoders may legally produce different bytes for equal values; only
// the identifier-to-value mapping is significant. This package itself
// always emits struct fields in ascending identifier order and minimal
// LEB128 lengths, but decoders must not rely on either.
package brine
