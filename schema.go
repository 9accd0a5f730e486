package brine

// A Schema describes the shape a reader expects at one position of the
// input. Schemas gate two behaviors that schemaless decoding cannot
// provide: struct fields outside the schema are decoded and discarded
// instead of surfaced, and enum variants outside the schema are a hard
// failure instead of data.
//
// A nil Schema (or Any) accepts any well-formed value.
type Schema interface {
	schemaNode()
}

// Any accepts any well-formed value.
var Any Schema = AnySchema{}

// AnySchema accepts any well-formed value.
type AnySchema struct{}

// PrimSchema requires exactly the given fixed-size or string tag.
type PrimSchema TypeID

// ArraySchema requires an array and applies Elem to every element.
type ArraySchema struct {
	Elem Schema
}

// MapSchema requires a map and applies Key and Val to every pair.
type MapSchema struct {
	Key Schema
	Val Schema
}

// StructSchema requires a struct. Fields maps the identifiers the reader
// knows to their expected shapes; identifiers outside the map are decoded
// for framing and discarded. Identifiers in the map but absent from the
// wire are simply absent from the result. Requiredness is the caller's
// concern, not the codec's.
type StructSchema struct {
	Fields map[uint64]Schema
}

// EnumSchema requires an enum and declares the reader's known variants.
// A nil map value declares a bare variant (no payload); a non-nil value
// is the payload's expected shape. Any variant identifier outside the map
// fails decoding with ErrUnknownVariant.
type EnumSchema struct {
	Variants map[uint64]Schema
}

func (AnySchema) schemaNode()    {}
func (PrimSchema) schemaNode()   {}
func (ArraySchema) schemaNode()  {}
func (MapSchema) schemaNode()    {}
func (StructSchema) schemaNode() {}
func (EnumSchema) schemaNode()   {}

// schemaTag returns the wire tag a schema requires, or ok=false when the
// schema accepts any tag.
func schemaTag(s Schema) (TypeID, bool) {
	switch s := s.(type) {
	case nil, AnySchema:
		return 0, false
	case PrimSchema:
		return TypeID(s), true
	case ArraySchema:
		return TypeArray, true
	case MapSchema:
		return TypeMap, true
	case StructSchema:
		return TypeStruct, true
	case EnumSchema:
		return TypeEnum, true
	default:
		return 0, false
	}
}
