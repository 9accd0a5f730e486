package brine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualDistinguishesKinds(t *testing.T) {
	// Same bits, different kind: never equal.
	assert.False(t, U8(1).Equal(I8(1)))
	assert.False(t, U32(0).Equal(U64(0)))
	assert.False(t, Null{}.Equal(Bool(false)))
	assert.False(t, Timestamp(7).Equal(U64(7)))
}

func TestMapEqualIgnoresOrder(t *testing.T) {
	a := Map{
		{Key: String("x"), Value: U8(1)},
		{Key: String("y"), Value: U8(2)},
	}
	b := Map{
		{Key: String("y"), Value: U8(2)},
		{Key: String("x"), Value: U8(1)},
	}
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	c := Map{
		{Key: String("x"), Value: U8(1)},
		{Key: String("y"), Value: U8(3)},
	}
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Map{{Key: String("x"), Value: U8(1)}}))
}

func TestArrayEqualIsOrdered(t *testing.T) {
	assert.True(t, Array{U8(1), U8(2)}.Equal(Array{U8(1), U8(2)}))
	assert.False(t, Array{U8(1), U8(2)}.Equal(Array{U8(2), U8(1)}))
}

func TestFloatEqualByBitPattern(t *testing.T) {
	assert.True(t, F64(math.NaN()).Equal(F64(math.NaN())))
	assert.True(t, F32(float32(math.NaN())).Equal(F32(float32(math.NaN()))))

	// Positive and negative zero differ in bits, so they differ here.
	assert.False(t, F64(0).Equal(F64(math.Copysign(0, -1))))
}

func TestStructEqual(t *testing.T) {
	a := Struct{0: U8(1), 1: String("x")}
	assert.True(t, a.Equal(Struct{1: String("x"), 0: U8(1)}))
	assert.False(t, a.Equal(Struct{0: U8(1)}))
	assert.False(t, a.Equal(Struct{0: U8(1), 2: String("x")}))
}

func TestEnumEqual(t *testing.T) {
	assert.True(t, Enum{Variant: 1}.Equal(Enum{Variant: 1}))
	assert.False(t, Enum{Variant: 1}.Equal(Enum{Variant: 2}))
	assert.False(t, Enum{Variant: 1}.Equal(Enum{Variant: 1, Payload: Null{}}))
	assert.True(t,
		Enum{Variant: 1, Payload: U8(1)}.Equal(Enum{Variant: 1, Payload: U8(1)}))
}

func TestTypeIDString(t *testing.T) {
	assert.Equal(t, "u32", TypeU32.String())
	assert.Equal(t, "timestamp", TypeTimestamp.String())
	assert.Equal(t, "TypeID(0x42)", TypeID(0x42).String())
}
