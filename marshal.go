package brine

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/puzpuzpuz/xsync/v4"
)

// Marshaler lets a type define its own mapping into the value model,
// bypassing the reflection rules below.
type Marshaler interface {
	MarshalBrine() (Value, error)
}

// Unmarshaler is the decode counterpart of Marshaler.
type Unmarshaler interface {
	UnmarshalBrine(Value) error
}

// Marshal encodes a Go value to wire bytes. Struct fields opt in with a
// `brine:"<id>[,optional][,omitempty]"` tag; untagged and "-" fields are
// ignored. Optional fields must be pointers and are omitted when nil. A
// struct whose tagged fields are all optional pointers with exactly one
// set encodes as an enum, the set field's identifier acting as the
// variant identifier.
func Marshal(v any) ([]byte, error) {
	val, err := MarshalValue(v)
	if err != nil {
		return nil, err
	}
	return ToBytes(val), nil
}

// Unmarshal decodes wire bytes into a Go value, which must be a non-nil
// pointer. Wire fields with identifiers the target does not declare are
// ignored; declared fields absent from the wire are an error unless
// marked optional or omitempty.
func Unmarshal(data []byte, v any) error {
	val, err := FromBytes(data)
	if err != nil {
		return err
	}
	return UnmarshalValue(val, v)
}

// MarshalValue maps a Go value into the value model without encoding it.
func MarshalValue(v any) (Value, error) {
	return marshalReflect(reflect.ValueOf(v))
}

// UnmarshalValue projects a decoded value into a Go value, which must be
// a non-nil pointer.
func UnmarshalValue(val Value, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("brine: Unmarshal target must be a non-nil pointer, got %T", v)
	}
	return unmarshalReflect(val, rv.Elem())
}

// Field tables are computed once per Go type and shared across calls.
var structTables = xsync.NewMap[reflect.Type, *structTable]()

type fieldInfo struct {
	id        uint64
	index     int
	optional  bool
	omitempty bool
}

type structTable struct {
	fields   []fieldInfo // ascending id
	enumLike bool        // all tagged fields are optional pointers
}

func tableOf(t reflect.Type) (*structTable, error) {
	if tbl, ok := structTables.Load(t); ok {
		return tbl, nil
	}
	tbl := &structTable{enumLike: true}
	seen := map[uint64]int{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		info, ok, err := parseFieldTag(f)
		if err != nil {
			return nil, fmt.Errorf("brine: %s.%s: %w", t, f.Name, err)
		}
		if !ok {
			continue
		}
		if prev, dup := seen[info.id]; dup {
			return nil, fmt.Errorf("brine: %s: field id %d used by both %s and %s",
				t, info.id, t.Field(prev).Name, f.Name)
		}
		seen[info.id] = i
		info.index = i
		tbl.fields = append(tbl.fields, info)
		if !info.optional || f.Type.Kind() != reflect.Pointer {
			tbl.enumLike = false
		}
	}
	if len(tbl.fields) == 0 {
		tbl.enumLike = false
	}
	sort.Slice(tbl.fields, func(i, j int) bool { return tbl.fields[i].id < tbl.fields[j].id })
	structTables.Store(t, tbl)
	return tbl, nil
}

func parseFieldTag(f reflect.StructField) (fieldInfo, bool, error) {
	tag := f.Tag.Get("brine")
	if tag == "" || tag == "-" {
		return fieldInfo{}, false, nil
	}
	parts := strings.Split(tag, ",")
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return fieldInfo{}, false, fmt.Errorf("bad field id %q", parts[0])
	}
	info := fieldInfo{id: id}
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case "optional":
			info.optional = true
		case "omitempty":
			info.omitempty = true
		case "":
		default:
			return fieldInfo{}, false, fmt.Errorf("unknown tag option %q", p)
		}
	}
	return info, true, nil
}

var (
	timeType      = reflect.TypeOf(time.Time{})
	valueType     = reflect.TypeOf((*Value)(nil)).Elem()
	marshalerType = reflect.TypeOf((*Marshaler)(nil)).Elem()
)

func marshalReflect(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null{}, nil
	}
	if rv.Type().Implements(valueType) {
		return rv.Interface().(Value), nil
	}
	if rv.Type().Implements(marshalerType) {
		return rv.Interface().(Marshaler).MarshalBrine()
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(marshalerType) {
		return rv.Addr().Interface().(Marshaler).MarshalBrine()
	}
	if rv.Type() == timeType {
		t := rv.Interface().(time.Time)
		sec := t.Unix()
		if sec < 0 {
			return nil, fmt.Errorf("brine: timestamp %v precedes the epoch", t)
		}
		return Timestamp(sec), nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return marshalReflect(rv.Elem())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Uint8:
		return U8(rv.Uint()), nil
	case reflect.Uint16:
		return U16(rv.Uint()), nil
	case reflect.Uint32:
		return U32(rv.Uint()), nil
	case reflect.Uint64, reflect.Uint:
		return U64(rv.Uint()), nil
	case reflect.Int8:
		return I8(rv.Int()), nil
	case reflect.Int16:
		return I16(rv.Int()), nil
	case reflect.Int32:
		return I32(rv.Int()), nil
	case reflect.Int64, reflect.Int:
		return I64(rv.Int()), nil
	case reflect.Float32:
		return F32(rv.Float()), nil
	case reflect.Float64:
		return F64(rv.Float()), nil
	case reflect.String:
		s := rv.String()
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("brine: string holds invalid UTF-8")
		}
		return String(s), nil
	case reflect.Slice, reflect.Array:
		out := make(Array, rv.Len())
		for i := range out {
			elem, err := marshalReflect(rv.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	case reflect.Map:
		return marshalGoMap(rv)
	case reflect.Struct:
		return marshalGoStruct(rv)
	default:
		return nil, fmt.Errorf("brine: cannot marshal %s", rv.Type())
	}
}

// marshalGoMap emits entries sorted by encoded key so that equal maps
// produce equal bytes. Decoders attach no meaning to the order.
func marshalGoMap(rv reflect.Value) (Value, error) {
	out := make(Map, 0, rv.Len())
	keys := make([][]byte, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := marshalReflect(iter.Key())
		if err != nil {
			return nil, err
		}
		val, err := marshalReflect(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, MapEntry{Key: key, Value: val})
		keys = append(keys, ToBytes(key))
	}
	sort.Sort(&mapByKey{entries: out, keys: keys})
	return out, nil
}

type mapByKey struct {
	entries Map
	keys    [][]byte
}

func (m *mapByKey) Len() int           { return len(m.entries) }
func (m *mapByKey) Less(i, j int) bool { return bytes.Compare(m.keys[i], m.keys[j]) < 0 }
func (m *mapByKey) Swap(i, j int) {
	m.entries[i], m.entries[j] = m.entries[j], m.entries[i]
	m.keys[i], m.keys[j] = m.keys[j], m.keys[i]
}

func marshalGoStruct(rv reflect.Value) (Value, error) {
	tbl, err := tableOf(rv.Type())
	if err != nil {
		return nil, err
	}
	if tbl.enumLike {
		present := -1
		for i, f := range tbl.fields {
			if !rv.Field(f.index).IsNil() {
				if present >= 0 {
					present = -1
					break
				}
				present = i
			}
		}
		if present >= 0 {
			f := tbl.fields[present]
			payload, err := marshalReflect(rv.Field(f.index).Elem())
			if err != nil {
				return nil, err
			}
			return Enum{Variant: f.id, Payload: payload}, nil
		}
	}
	out := make(Struct, len(tbl.fields))
	for _, f := range tbl.fields {
		fv := rv.Field(f.index)
		if f.optional && fv.Kind() == reflect.Pointer && fv.IsNil() {
			continue
		}
		if f.omitempty && fv.IsZero() {
			continue
		}
		val, err := marshalReflect(fv)
		if err != nil {
			return nil, err
		}
		out[f.id] = val
	}
	return out, nil
}

func unmarshalReflect(val Value, rv reflect.Value) error {
	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalBrine(val)
		}
	}
	// Direct assignment covers targets typed as Value, a concrete value
	// kind (U128, Timestamp, ...), or any interface they satisfy.
	if reflect.TypeOf(val).AssignableTo(rv.Type()) {
		rv.Set(reflect.ValueOf(val))
		return nil
	}
	if rv.Type() == timeType {
		ts, ok := val.(Timestamp)
		if !ok {
			return mismatch(TypeTimestamp, val)
		}
		rv.Set(reflect.ValueOf(time.Unix(int64(ts), 0).UTC()))
		return nil
	}
	switch rv.Kind() {
	case reflect.Pointer:
		if _, isNull := val.(Null); isNull {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unmarshalReflect(val, rv.Elem())
	case reflect.Bool:
		b, ok := val.(Bool)
		if !ok {
			return mismatch(TypeBool, val)
		}
		rv.SetBool(bool(b))
		return nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return unmarshalUint(val, rv)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return unmarshalInt(val, rv)
	case reflect.Float32:
		f, ok := val.(F32)
		if !ok {
			return mismatch(TypeF32, val)
		}
		rv.SetFloat(float64(f))
		return nil
	case reflect.Float64:
		f, ok := val.(F64)
		if !ok {
			return mismatch(TypeF64, val)
		}
		rv.SetFloat(float64(f))
		return nil
	case reflect.String:
		s, ok := val.(String)
		if !ok {
			return mismatch(TypeString, val)
		}
		rv.SetString(string(s))
		return nil
	case reflect.Slice:
		arr, ok := val.(Array)
		if !ok {
			return mismatch(TypeArray, val)
		}
		out := reflect.MakeSlice(rv.Type(), len(arr), len(arr))
		for i, elem := range arr {
			if err := unmarshalReflect(elem, out.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil
	case reflect.Map:
		m, ok := val.(Map)
		if !ok {
			return mismatch(TypeMap, val)
		}
		out := reflect.MakeMapWithSize(rv.Type(), len(m))
		for _, e := range m {
			key := reflect.New(rv.Type().Key()).Elem()
			if err := unmarshalReflect(e.Key, key); err != nil {
				return err
			}
			elem := reflect.New(rv.Type().Elem()).Elem()
			if err := unmarshalReflect(e.Value, elem); err != nil {
				return err
			}
			out.SetMapIndex(key, elem)
		}
		rv.Set(out)
		return nil
	case reflect.Struct:
		return unmarshalGoStruct(val, rv)
	default:
		return fmt.Errorf("brine: cannot unmarshal into %s", rv.Type())
	}
}

func unmarshalUint(val Value, rv reflect.Value) error {
	switch v := val.(type) {
	case U8:
		if rv.Kind() != reflect.Uint8 {
			return mismatch(TypeU8, val)
		}
		rv.SetUint(uint64(v))
	case U16:
		if rv.Kind() != reflect.Uint16 {
			return mismatch(TypeU16, val)
		}
		rv.SetUint(uint64(v))
	case U32:
		if rv.Kind() != reflect.Uint32 {
			return mismatch(TypeU32, val)
		}
		rv.SetUint(uint64(v))
	case U64:
		if rv.Kind() != reflect.Uint64 && rv.Kind() != reflect.Uint {
			return mismatch(TypeU64, val)
		}
		rv.SetUint(uint64(v))
	default:
		return &Error{Kind: ErrTypeMismatch, Detail: fmt.Sprintf("cannot store %v into %s", val.Type(), rv.Type())}
	}
	return nil
}

func unmarshalInt(val Value, rv reflect.Value) error {
	switch v := val.(type) {
	case I8:
		if rv.Kind() != reflect.Int8 {
			return mismatch(TypeI8, val)
		}
		rv.SetInt(int64(v))
	case I16:
		if rv.Kind() != reflect.Int16 {
			return mismatch(TypeI16, val)
		}
		rv.SetInt(int64(v))
	case I32:
		if rv.Kind() != reflect.Int32 {
			return mismatch(TypeI32, val)
		}
		rv.SetInt(int64(v))
	case I64:
		if rv.Kind() != reflect.Int64 && rv.Kind() != reflect.Int {
			return mismatch(TypeI64, val)
		}
		rv.SetInt(int64(v))
	default:
		return &Error{Kind: ErrTypeMismatch, Detail: fmt.Sprintf("cannot store %v into %s", val.Type(), rv.Type())}
	}
	return nil
}

func unmarshalGoStruct(val Value, rv reflect.Value) error {
	tbl, err := tableOf(rv.Type())
	if err != nil {
		return err
	}
	switch v := val.(type) {
	case Enum:
		for _, f := range tbl.fields {
			if f.id != v.Variant {
				continue
			}
			fv := rv.Field(f.index)
			if fv.Kind() != reflect.Pointer {
				return fmt.Errorf("brine: enum variant field %s must be a pointer", rv.Type().Field(f.index).Name)
			}
			fv.Set(reflect.New(fv.Type().Elem()))
			if v.Payload == nil {
				return nil
			}
			return unmarshalReflect(v.Payload, fv.Elem())
		}
		return &Error{Kind: ErrUnknownVariant, Detail: fmt.Sprintf("variant %d of %s", v.Variant, rv.Type())}
	case Struct:
		for _, f := range tbl.fields {
			fieldVal, present := v[f.id]
			if !present {
				if f.optional || f.omitempty {
					continue
				}
				return &Error{Kind: ErrMissingField, Detail: fmt.Sprintf("field %d (%s.%s)", f.id, rv.Type(), rv.Type().Field(f.index).Name)}
			}
			if err := unmarshalReflect(fieldVal, rv.Field(f.index)); err != nil {
				return err
			}
		}
		return nil
	default:
		return mismatch(TypeStruct, val)
	}
}

func mismatch(want TypeID, got Value) error {
	return &Error{Kind: ErrTypeMismatch, Detail: fmt.Sprintf("expected %v, got %v", want, got.Type())}
}
