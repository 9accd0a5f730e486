// Package text renders values as human-readable text and parses that text
// back into values. The form is line-oriented and diff-friendly: scalars
// carry a type suffix (42u32, -1i64, 2.5f32), strings are quoted, and
// compound values brace-delimit one element per line.
package text

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/brine-format/brine"
)

// Format renders a value as text. The output round-trips through Parse.
func Format(v brine.Value) string {
	var b strings.Builder
	formatValue(&b, v, 0)
	return b.String()
}

func formatValue(b *strings.Builder, v brine.Value, indent int) {
	pad := strings.Repeat("  ", indent)
	switch v := v.(type) {
	case brine.Null:
		b.WriteString("null")
	case brine.Bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case brine.U8:
		fmt.Fprintf(b, "%du8", uint8(v))
	case brine.U16:
		fmt.Fprintf(b, "%du16", uint16(v))
	case brine.U32:
		fmt.Fprintf(b, "%du32", uint32(v))
	case brine.U64:
		fmt.Fprintf(b, "%du64", uint64(v))
	case brine.I8:
		fmt.Fprintf(b, "%di8", int8(v))
	case brine.I16:
		fmt.Fprintf(b, "%di16", int16(v))
	case brine.I32:
		fmt.Fprintf(b, "%di32", int32(v))
	case brine.I64:
		fmt.Fprintf(b, "%di64", int64(v))
	case brine.U128:
		b.WriteString(bigFromLE(v[:]).String())
		b.WriteString("u128")
	case brine.I128:
		b.WriteString(i128String(v))
		b.WriteString("i128")
	case brine.F32:
		b.WriteString(formatFloat(float64(v), 32))
	case brine.F64:
		b.WriteString(formatFloat(float64(v), 64))
	case brine.String:
		writeQuoted(b, string(v))
	case brine.Timestamp:
		fmt.Fprintf(b, "timestamp(%d)", uint64(v))
	case brine.Array:
		if len(v) == 0 {
			b.WriteString("array {}")
			return
		}
		b.WriteString("array {\n")
		for _, elem := range v {
			b.WriteString(pad + "  ")
			formatValue(b, elem, indent+1)
			b.WriteString(",\n")
		}
		b.WriteString(pad + "}")
	case brine.Map:
		if len(v) == 0 {
			b.WriteString("map {}")
			return
		}
		b.WriteString("map {\n")
		for _, e := range v {
			b.WriteString(pad + "  ")
			formatValue(b, e.Key, indent+1)
			b.WriteString(": ")
			formatValue(b, e.Value, indent+1)
			b.WriteString(",\n")
		}
		b.WriteString(pad + "}")
	case brine.Struct:
		if len(v) == 0 {
			b.WriteString("struct {}")
			return
		}
		ids := make([]uint64, 0, len(v))
		for id := range v {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		b.WriteString("struct {\n")
		for _, id := range ids {
			fmt.Fprintf(b, "%s  %d: ", pad, id)
			formatValue(b, v[id], indent+1)
			b.WriteString(",\n")
		}
		b.WriteString(pad + "}")
	case brine.Enum:
		b.WriteString("enum {\n")
		fmt.Fprintf(b, "%s  %d", pad, v.Variant)
		if v.Payload != nil {
			b.WriteString(": ")
			formatValue(b, v.Payload, indent+1)
		}
		b.WriteString(",\n" + pad + "}")
	default:
		panic(fmt.Sprintf("text: unhandled value %T", v))
	}
}

func formatFloat(f float64, bits int) string {
	suffix := "f64"
	if bits == 32 {
		suffix = "f32"
	}
	switch {
	case math.IsNaN(f):
		return "NaN" + suffix
	case math.IsInf(f, 1):
		return "Inf" + suffix
	case math.IsInf(f, -1):
		return "-Inf" + suffix
	}
	return strconv.FormatFloat(f, 'g', -1, bits) + suffix
}

// writeQuoted emits a double-quoted literal. Control bytes use \xNN so
// the output stays printable.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

func bigFromLE(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i, x := range le {
		be[len(le)-1-i] = x
	}
	return new(big.Int).SetBytes(be)
}

// i128String interprets 16 little-endian bytes as a two's complement
// signed integer.
func i128String(v brine.I128) string {
	n := bigFromLE(v[:])
	if v[15]&0x80 != 0 {
		n.Sub(n, two128)
	}
	return n.String()
}
