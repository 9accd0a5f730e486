package text

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brine-format/brine"
)

func u128(hi, lo uint64) brine.U128 {
	var v brine.U128
	for i := 0; i < 8; i++ {
		v[i] = byte(lo >> (8 * i))
		v[i+8] = byte(hi >> (8 * i))
	}
	return v
}

func TestFormatScalars(t *testing.T) {
	cases := []struct {
		value brine.Value
		want  string
	}{
		{brine.Null{}, "null"},
		{brine.Bool(true), "true"},
		{brine.Bool(false), "false"},
		{brine.U8(255), "255u8"},
		{brine.U32(42), "42u32"},
		{brine.I32(-42), "-42i32"},
		{brine.U64(1234567890), "1234567890u64"},
		{brine.F32(2.5), "2.5f32"},
		{brine.F64(1), "1f64"},
		{brine.F64(math.NaN()), "NaNf64"},
		{brine.F32(float32(math.Inf(-1))), "-Inff32"},
		{brine.String("Hello"), `"Hello"`},
		{brine.String("Hello\nWorld"), `"Hello\nWorld"`},
		{brine.String("q\"\\"), `"q\"\\"`},
		{brine.String("\x01"), `"\x01"`},
		{brine.Timestamp(1700000000), "timestamp(1700000000)"},
		{u128(0, 1), "1u128"},
		{brine.I128(u128(^uint64(0), ^uint64(0))), "-1i128"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.value))
	}
}

func TestFormatCompound(t *testing.T) {
	arr := brine.Array{brine.U32(1), brine.U32(2), brine.U32(3)}
	assert.Equal(t, "array {\n  1u32,\n  2u32,\n  3u32,\n}", Format(arr))

	st := brine.Struct{0: brine.U32(42), 1: brine.String("test")}
	assert.Equal(t, "struct {\n  0: 42u32,\n  1: \"test\",\n}", Format(st))

	en := brine.Enum{Variant: 2, Payload: brine.U32(5)}
	assert.Equal(t, "enum {\n  2: 5u32,\n}", Format(en))
	assert.Equal(t, "enum {\n  3,\n}", Format(brine.Enum{Variant: 3}))

	m := brine.Map{{Key: brine.String("a"), Value: brine.U8(1)}}
	assert.Equal(t, "map {\n  \"a\": 1u8,\n}", Format(m))

	assert.Equal(t, "array {}", Format(brine.Array{}))
	assert.Equal(t, "struct {}", Format(brine.Struct{}))
	assert.Equal(t, "map {}", Format(brine.Map{}))
}

func TestFormatNestedIndentation(t *testing.T) {
	v := brine.Struct{0: brine.Array{brine.U8(1)}}
	assert.Equal(t, "struct {\n  0: array {\n    1u8,\n  },\n}", Format(v))
}

func TestRoundTrip(t *testing.T) {
	values := []brine.Value{
		brine.Null{},
		brine.Bool(true),
		brine.U8(0),
		brine.U16(65535),
		brine.I8(-128),
		brine.I64(-1234567890),
		u128(^uint64(0), ^uint64(0)),
		brine.I128(u128(1<<63, 0)), // most negative i128
		brine.F32(float32(math.Pi)),
		brine.F64(math.Inf(1)),
		brine.F64(math.NaN()),
		brine.String("hëllo \"there\"\n"),
		brine.Timestamp(0),
		brine.Array{brine.U8(1), brine.String("x"), brine.Null{}},
		brine.Map{
			{Key: brine.U32(1), Value: brine.Bool(true)},
			{Key: brine.U32(2), Value: brine.Bool(false)},
		},
		brine.Struct{0: brine.U64(7), 9: brine.Enum{Variant: 1}},
		brine.Enum{Variant: 5, Payload: brine.Struct{0: brine.String("deep")}},
	}
	for _, v := range values {
		text := Format(v)
		got, err := Parse(text)
		require.NoError(t, err, "parsing %q", text)
		assert.True(t, v.Equal(got), "round trip of %q gave %#v", text, got)
	}
}

func TestParseAcceptsHexAndUnderscores(t *testing.T) {
	v, err := Parse("0x2Au8")
	require.NoError(t, err)
	assert.True(t, brine.U8(42).Equal(v))

	v, err = Parse("1_000_000u32")
	require.NoError(t, err)
	assert.True(t, brine.U32(1000000).Equal(v))
}

func TestParseComments(t *testing.T) {
	src := `
# a log record
struct {
  0: 7u64,      // sequence
  1: "trace",   # label
}
`
	v, err := Parse(src)
	require.NoError(t, err)
	assert.True(t, brine.Struct{0: brine.U64(7), 1: brine.String("trace")}.Equal(v))
}

func TestParseOptionalTrailingComma(t *testing.T) {
	a, err := Parse("array { 1u8, 2u8 }")
	require.NoError(t, err)
	b, err := Parse("array { 1u8, 2u8, }")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"missing suffix", "42"},
		{"unknown suffix", "42u9"},
		{"range", "256u8"},
		{"negative unsigned", "-1u32"},
		{"u128 range", "340282366920938463463374607431768211456u128"},
		{"unterminated string", `"abc`},
		{"bad keyword", "nil"},
		{"trailing token", "1u8 2u8"},
		{"duplicate struct field", "struct { 0: 1u8, 0: 2u8 }"},
		{"duplicate map key", `map { "k": 1u8, "k": 2u8 }`},
		{"enum missing id", "enum { }"},
		{"unexpected char", "@"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "text: offset")
		})
	}
}

func TestParsedValueEncodes(t *testing.T) {
	v, err := Parse(`struct { 0: 7u64, 1: "trace" }`)
	require.NoError(t, err)
	want := brine.ToBytes(brine.Struct{0: brine.U64(7), 1: brine.String("trace")})
	assert.Equal(t, want, brine.ToBytes(v))
}
