package text

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brine-format/brine"
)

// Parse reads one value from src. Trailing whitespace and comments are
// allowed; anything else after the value is an error. Line comments start
// with # or //.
func Parse(src string) (brine.Value, error) {
	p := &parser{src: src}
	if err := p.advance(); err != nil {
		return nil, err
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errf("unexpected %q after value", p.tok.lit)
	}
	return v, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokColon
	tokComma
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	lit  string
	off  int
}

type parser struct {
	src string
	off int
	tok token
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("text: offset %d: %s", p.tok.off, fmt.Sprintf(format, args...))
}

func (p *parser) advance() error {
	p.skipSpaceAndComments()
	start := p.off
	if p.off >= len(p.src) {
		p.tok = token{kind: tokEOF, off: start}
		return nil
	}
	b := p.src[p.off]
	switch {
	case isIdentStart(b) || (b == '-' && p.off+1 < len(p.src) && isIdentStart(p.src[p.off+1])):
		// A leading minus joins the identifier so -Inff64 lexes whole.
		p.off++
		for p.off < len(p.src) && isIdentPart(p.src[p.off]) {
			p.off++
		}
		p.tok = token{kind: tokIdent, lit: p.src[start:p.off], off: start}
	case isDigit(b) || (b == '-' && p.off+1 < len(p.src) && isDigit(p.src[p.off+1])):
		return p.scanNumber(start)
	case b == '"':
		return p.scanString(start)
	default:
		p.off++
		switch b {
		case ':':
			p.tok = token{kind: tokColon, lit: ":", off: start}
		case ',':
			p.tok = token{kind: tokComma, lit: ",", off: start}
		case '{':
			p.tok = token{kind: tokLBrace, lit: "{", off: start}
		case '}':
			p.tok = token{kind: tokRBrace, lit: "}", off: start}
		case '(':
			p.tok = token{kind: tokLParen, lit: "(", off: start}
		case ')':
			p.tok = token{kind: tokRParen, lit: ")", off: start}
		default:
			p.tok = token{off: start}
			return p.errf("unexpected character %q", b)
		}
	}
	return nil
}

func (p *parser) skipSpaceAndComments() {
	for p.off < len(p.src) {
		b := p.src[p.off]
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			p.off++
			continue
		}
		if b == '#' || (b == '/' && p.off+1 < len(p.src) && p.src[p.off+1] == '/') {
			for p.off < len(p.src) && p.src[p.off] != '\n' {
				p.off++
			}
			continue
		}
		break
	}
}

func (p *parser) scanNumber(start int) error {
	if p.src[p.off] == '-' {
		p.off++
	}
	if strings.HasPrefix(p.src[p.off:], "0x") || strings.HasPrefix(p.src[p.off:], "0X") {
		p.off += 2
		for p.off < len(p.src) && (isHexDigit(p.src[p.off]) || p.src[p.off] == '_') {
			p.off++
		}
		p.tok = token{kind: tokInt, lit: p.src[start:p.off], off: start}
		return nil
	}
	isFloat := false
	for p.off < len(p.src) && (isDigit(p.src[p.off]) || p.src[p.off] == '_') {
		p.off++
	}
	if p.off < len(p.src) && p.src[p.off] == '.' {
		isFloat = true
		p.off++
		for p.off < len(p.src) && (isDigit(p.src[p.off]) || p.src[p.off] == '_') {
			p.off++
		}
	}
	if p.off < len(p.src) && (p.src[p.off] == 'e' || p.src[p.off] == 'E') {
		isFloat = true
		p.off++
		if p.off < len(p.src) && (p.src[p.off] == '+' || p.src[p.off] == '-') {
			p.off++
		}
		for p.off < len(p.src) && isDigit(p.src[p.off]) {
			p.off++
		}
	}
	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	p.tok = token{kind: kind, lit: p.src[start:p.off], off: start}
	return nil
}

func (p *parser) scanString(start int) error {
	i := p.off + 1
	for i < len(p.src) {
		switch p.src[i] {
		case '"':
			i++
			unq, err := strconv.Unquote(p.src[p.off:i])
			if err != nil {
				p.tok = token{off: start}
				return p.errf("bad string literal: %v", err)
			}
			p.tok = token{kind: tokString, lit: unq, off: start}
			p.off = i
			return nil
		case '\\':
			i += 2
		default:
			i++
		}
	}
	p.tok = token{off: start}
	return p.errf("unterminated string")
}

func isIdentStart(b byte) bool { return b == '_' || unicode.IsLetter(rune(b)) }
func isIdentPart(b byte) bool  { return isIdentStart(b) || isDigit(b) }
func isDigit(b byte) bool      { return '0' <= b && b <= '9' }
func isHexDigit(b byte) bool {
	return isDigit(b) || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, p.errf("expected %s, got %q", what, p.tok.lit)
	}
	t := p.tok
	return t, p.advance()
}

func (p *parser) parseValue() (brine.Value, error) {
	switch p.tok.kind {
	case tokIdent:
		return p.parseIdent()
	case tokString:
		s := p.tok.lit
		if !utf8.ValidString(s) {
			return nil, p.errf("string escapes decode to invalid UTF-8")
		}
		return brine.String(s), p.advance()
	case tokInt, tokFloat:
		return p.parseNumber()
	default:
		return nil, p.errf("expected a value, got %q", p.tok.lit)
	}
}

func (p *parser) parseIdent() (brine.Value, error) {
	switch lit := p.tok.lit; lit {
	case "null":
		return brine.Null{}, p.advance()
	case "true":
		return brine.Bool(true), p.advance()
	case "false":
		return brine.Bool(false), p.advance()
	case "NaNf32", "Inff32", "-Inff32":
		return brine.F32(specialFloat(lit)), p.advance()
	case "NaNf64", "Inff64", "-Inff64":
		return brine.F64(specialFloat(lit)), p.advance()
	case "timestamp":
		return p.parseTimestamp()
	case "array":
		return p.parseArray()
	case "map":
		return p.parseMap()
	case "struct":
		return p.parseStruct()
	case "enum":
		return p.parseEnum()
	default:
		return nil, p.errf("unknown keyword %q", lit)
	}
}

func specialFloat(lit string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSuffix(lit, "f64"), "f32"), 64)
	return f
}

func (p *parser) parseTimestamp() (brine.Value, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	lit, err := p.expect(tokInt, "an integer")
	if err != nil {
		return nil, err
	}
	sec, err := strconv.ParseUint(clean(lit.lit), 0, 64)
	if err != nil {
		return nil, p.errf("bad timestamp %q", lit.lit)
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return brine.Timestamp(sec), nil
}

func (p *parser) parseArray() (brine.Value, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	out := brine.Array{}
	for p.tok.kind != tokRBrace {
		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
		if err := p.separator(); err != nil {
			return nil, err
		}
	}
	return out, p.advance()
}

func (p *parser) parseMap() (brine.Value, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	out := brine.Map{}
	for p.tok.kind != tokRBrace {
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		for _, e := range out {
			if e.Key.Equal(key) {
				return nil, p.errf("duplicate map key")
			}
		}
		if _, err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, brine.MapEntry{Key: key, Value: val})
		if err := p.separator(); err != nil {
			return nil, err
		}
	}
	return out, p.advance()
}

func (p *parser) parseStruct() (brine.Value, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	out := brine.Struct{}
	for p.tok.kind != tokRBrace {
		id, err := p.parseFieldID()
		if err != nil {
			return nil, err
		}
		if _, dup := out[id]; dup {
			return nil, p.errf("duplicate field %d", id)
		}
		if _, err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out[id] = val
		if err := p.separator(); err != nil {
			return nil, err
		}
	}
	return out, p.advance()
}

func (p *parser) parseEnum() (brine.Value, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	variant, err := p.parseFieldID()
	if err != nil {
		return nil, err
	}
	out := brine.Enum{Variant: variant}
	if p.tok.kind == tokColon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		payload, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out.Payload = payload
	}
	if p.tok.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) parseFieldID() (uint64, error) {
	lit, err := p.expect(tokInt, "a field identifier")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(clean(lit.lit), 0, 64)
	if err != nil {
		return 0, p.errf("bad identifier %q", lit.lit)
	}
	return id, nil
}

// separator consumes the comma between elements. The comma before a
// closing brace is optional.
func (p *parser) separator() error {
	switch p.tok.kind {
	case tokComma:
		return p.advance()
	case tokRBrace:
		return nil
	default:
		return p.errf("expected ',' or '}', got %q", p.tok.lit)
	}
}

func (p *parser) parseNumber() (brine.Value, error) {
	lit := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	suffix, err := p.expect(tokIdent, "a type suffix")
	if err != nil {
		return nil, err
	}
	num := clean(lit.lit)
	switch suffix.lit {
	case "f32":
		f, perr := strconv.ParseFloat(num, 32)
		if perr != nil {
			return nil, p.numErr(lit, suffix)
		}
		return brine.F32(f), nil
	case "f64":
		f, perr := strconv.ParseFloat(num, 64)
		if perr != nil {
			return nil, p.numErr(lit, suffix)
		}
		return brine.F64(f), nil
	case "u8", "u16", "u32", "u64":
		bits := uintBits(suffix.lit)
		n, perr := strconv.ParseUint(num, 0, bits)
		if perr != nil {
			return nil, p.numErr(lit, suffix)
		}
		switch bits {
		case 8:
			return brine.U8(n), nil
		case 16:
			return brine.U16(n), nil
		case 32:
			return brine.U32(n), nil
		default:
			return brine.U64(n), nil
		}
	case "i8", "i16", "i32", "i64":
		bits := uintBits(suffix.lit)
		n, perr := strconv.ParseInt(num, 0, bits)
		if perr != nil {
			return nil, p.numErr(lit, suffix)
		}
		switch bits {
		case 8:
			return brine.I8(n), nil
		case 16:
			return brine.I16(n), nil
		case 32:
			return brine.I32(n), nil
		default:
			return brine.I64(n), nil
		}
	case "u128":
		le, ok := parse128(num, false)
		if !ok {
			return nil, p.numErr(lit, suffix)
		}
		return brine.U128(le), nil
	case "i128":
		le, ok := parse128(num, true)
		if !ok {
			return nil, p.numErr(lit, suffix)
		}
		return brine.I128(le), nil
	default:
		return nil, p.errf("unknown type suffix %q", suffix.lit)
	}
}

func (p *parser) numErr(lit, suffix token) error {
	return p.errf("number %q does not fit %s", lit.lit, suffix.lit)
}

func uintBits(suffix string) int {
	switch suffix[1:] {
	case "8":
		return 8
	case "16":
		return 16
	case "32":
		return 32
	default:
		return 64
	}
}

// parse128 parses a decimal or hex literal into 16 little-endian bytes,
// two's complement when signed.
func parse128(num string, signed bool) ([16]byte, bool) {
	var le [16]byte
	n, ok := new(big.Int).SetString(num, 0)
	if !ok {
		return le, false
	}
	if signed {
		min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
		max := new(big.Int).Lsh(big.NewInt(1), 127)
		if n.Cmp(min) < 0 || n.Cmp(max) >= 0 {
			return le, false
		}
		if n.Sign() < 0 {
			n = new(big.Int).Add(n, two128)
		}
	} else if n.Sign() < 0 || n.BitLen() > 128 {
		return le, false
	}
	var be [16]byte
	n.FillBytes(be[:])
	for i, b := range be {
		le[15-i] = b
	}
	return le, true
}

func clean(lit string) string { return strings.ReplaceAll(lit, "_", "") }
