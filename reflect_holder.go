package props

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag read by PropertiesOf.
const TagName = "props"

var holderType = reflect.TypeOf((*Holder)(nil)).Elem()

// Struct wraps a struct, or pointer to one, as a Holder whose properties are
// derived from its exported fields on every call. Pass a pointer when the
// struct is mutated after wrapping.
func Struct(v any) Holder {
	return structHolder{value: v}
}

type structHolder struct {
	value any
}

func (h structHolder) Properties() ([]Property, error) {
	return PropertiesOf(h.value)
}

// PropertiesOf derives properties from the exported fields of a struct:
//
//   - a field implementing Holder becomes a Nested property
//   - a slice or array of holders becomes a Collection; elements whose
//     pointer implements Holder count when they are addressable
//   - a map with holder values becomes a KeyedMap
//   - anything else becomes a Leaf
//
// The property name is the field name unless overridden with a `props:"name"`
// tag; `props:"-"` skips the field.
func PropertiesOf(v any) ([]Property, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %T", ErrNotStruct, v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T", ErrNotStruct, v)
	}

	t := rv.Type()
	properties := make([]Property, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, ok := fieldName(field)
		if !ok {
			continue
		}
		properties = append(properties, fieldProperty(name, rv.Field(i)))
	}
	return properties, nil
}

func fieldName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return field.Name, true
	}
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return "", false
	case "":
		return field.Name, true
	default:
		return name, true
	}
}

func fieldProperty(name string, v reflect.Value) Property {
	if holder, ok := asHolder(v); ok {
		return Nested(name, holder)
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		elem := v.Type().Elem()
		addressable := v.Kind() == reflect.Slice || v.CanAddr()
		if holderElem(elem) || (addressable && holderElem(reflect.PointerTo(elem))) {
			holders := make([]Holder, v.Len())
			for i := 0; i < v.Len(); i++ {
				if holder, ok := asHolder(v.Index(i)); ok {
					holders[i] = holder
				}
			}
			return Collection(name, holders)
		}
	case reflect.Map:
		if holderElem(v.Type().Elem()) {
			holders := make(map[string]Holder, v.Len())
			iter := v.MapRange()
			for iter.Next() {
				if holder, ok := asHolder(iter.Value()); ok {
					holders[fmt.Sprint(iter.Key().Interface())] = holder
				}
			}
			return KeyedMap(name, holders)
		}
	}

	return Leaf(name, v.Interface())
}

func holderElem(t reflect.Type) bool {
	return t.Implements(holderType)
}

// asHolder converts v to a Holder, taking its address when only the pointer
// type implements Holder and v is addressable.
func asHolder(v reflect.Value) (Holder, bool) {
	if !v.IsValid() {
		return nil, false
	}
	if v.Type().Implements(holderType) {
		if nilable(v.Kind()) && v.IsNil() {
			return nil, true
		}
		return v.Interface().(Holder), true
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(holderType) {
		return v.Addr().Interface().(Holder), true
	}
	return nil, false
}
