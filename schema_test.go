package brine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The asymmetry under test: struct readers tolerate fields they do not
// know, enum readers reject variants they do not know.

func TestStructReaderSkipsUnknownFields(t *testing.T) {
	// Writer is a newer version with an extra field 2.
	wire := ToBytes(Struct{
		0: U64(7),
		1: String("trace"),
		2: Array{Bool(true), Null{}},
	})

	reader := StructSchema{Fields: map[uint64]Schema{
		0: PrimSchema(TypeU64),
		1: PrimSchema(TypeString),
	}}
	fields, err := DecodeStruct(wire, reader)
	require.NoError(t, err)
	assert.Len(t, fields, 2)
	assert.True(t, U64(7).Equal(fields[0]))
	assert.True(t, String("trace").Equal(fields[1]))
	_, present := fields[2]
	assert.False(t, present, "unknown field must be discarded")
}

func TestStructReaderSkipsUnknownEnumField(t *testing.T) {
	// An unknown field holding an enum variant the reader never heard of
	// still skips cleanly: without a schema the variant is just data.
	wire := ToBytes(Struct{
		0: U8(1),
		9: Enum{Variant: 77, Payload: String("future")},
	})
	fields, err := DecodeStruct(wire, StructSchema{Fields: map[uint64]Schema{
		0: PrimSchema(TypeU8),
	}})
	require.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestStructReaderToleratesAbsentFields(t *testing.T) {
	// Writer is an older version that never heard of field 5.
	wire := ToBytes(Struct{0: U64(7)})
	fields, err := DecodeStruct(wire, StructSchema{Fields: map[uint64]Schema{
		0: PrimSchema(TypeU64),
		5: PrimSchema(TypeString),
	}})
	require.NoError(t, err)
	assert.Len(t, fields, 1)
	_, present := fields[5]
	assert.False(t, present)
}

func TestEnumReaderRejectsUnknownVariant(t *testing.T) {
	reader := EnumSchema{Variants: map[uint64]Schema{
		0: PrimSchema(TypeU32),
		1: nil, // bare
	}}

	variant, payload, err := DecodeEnum(EncodeEnum(0, U32(5)), reader)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), variant)
	assert.True(t, U32(5).Equal(payload))

	variant, payload, err = DecodeEnum(EncodeEnum(1, nil), reader)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), variant)
	assert.Nil(t, payload)

	_, _, err = DecodeEnum(EncodeEnum(2, U32(5)), reader)
	assert.True(t, IsKind(err, ErrUnknownVariant), "got %v", err)
}

func TestEnumPayloadPresenceMismatch(t *testing.T) {
	reader := EnumSchema{Variants: map[uint64]Schema{
		0: PrimSchema(TypeU32),
		1: nil,
	}}

	_, _, err := DecodeEnum(EncodeEnum(0, nil), reader)
	assert.True(t, IsKind(err, ErrEnumPayload), "declared payload, wire bare: %v", err)

	_, _, err = DecodeEnum(EncodeEnum(1, U8(1)), reader)
	assert.True(t, IsKind(err, ErrEnumPayload), "declared bare, wire payload: %v", err)
}

func TestSchemaTypeMismatch(t *testing.T) {
	_, err := DecodeOptions{Schema: PrimSchema(TypeU32)}.FromBytes(ToBytes(String("nope")))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrTypeMismatch))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 0, e.Offset)
}

func TestNestedSchemas(t *testing.T) {
	schema := StructSchema{Fields: map[uint64]Schema{
		0: ArraySchema{Elem: PrimSchema(TypeU8)},
		1: MapSchema{Key: PrimSchema(TypeString), Val: AnySchema{}},
	}}

	good := ToBytes(Struct{
		0: Array{U8(1), U8(2)},
		1: Map{{Key: String("k"), Value: Timestamp(1)}},
	})
	_, err := DecodeOptions{Schema: schema}.FromBytes(good)
	assert.NoError(t, err)

	bad := ToBytes(Struct{0: Array{U8(1), String("two")}})
	_, err = DecodeOptions{Schema: schema}.FromBytes(bad)
	assert.True(t, IsKind(err, ErrTypeMismatch))
}

func TestAnyAcceptsEverything(t *testing.T) {
	for _, tc := range wireVectors {
		_, err := DecodeOptions{Schema: Any}.FromBytes(tc.bytes)
		assert.NoError(t, err, tc.name)
	}
}

func TestSchemaDoesNotEnforceRequiredness(t *testing.T) {
	// An empty struct satisfies any struct schema; requiredness belongs to
	// the layer above.
	fields, err := DecodeStruct(ToBytes(Struct{}), StructSchema{Fields: map[uint64]Schema{
		0: PrimSchema(TypeU64),
	}})
	require.NoError(t, err)
	assert.Empty(t, fields)
}
