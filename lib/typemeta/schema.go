package typemeta

import (
	"reflect"
	"strings"

	"golang.org/x/xerrors"
)

// TagName is the struct tag read by DeriveSchema. `flatmsg:"-"` marks a field as not
// persistable, `flatmsg:"name"` renames it.
const TagName = "flatmsg"

// --------------------------------------------------------------------------
// Schema Definition
// --------------------------------------------------------------------------

// Field is one member of a record.
//
// Get and Set receive the addressable record value. A field without a setter is read
// only and not persisted.
type Field struct {
	Name string
	// Type is the actual type of the member
	Type reflect.Type
	// WireType is the declared (de)serialization type, defaults to Type. If both differ
	// the values are converted by the coercion registry.
	WireType reflect.Type

	Get func(obj reflect.Value) reflect.Value
	Set func(obj reflect.Value, v reflect.Value)

	skip bool
}

// As declares the type the member is serialized as
func (f Field) As(wireType reflect.Type) Field {
	f.WireType = wireType
	return f
}

// NotPersisted excludes the member from serialization
func (f Field) NotPersisted() Field {
	f.skip = true
	return f
}

// Persistable reports whether the member has both accessors and is not excluded
func (f Field) Persistable() bool {
	return !f.skip && f.Get != nil && f.Set != nil
}

// SerializedType returns the type the member is written and read as
func (f Field) SerializedType() reflect.Type {
	if f.WireType != nil {
		return f.WireType
	}
	return f.Type
}

// FieldOf declares a member of T with a typed getter and setter
func FieldOf[T, F any](name string, get func(*T) F, set func(*T, F)) Field {
	field := ReadOnlyField(name, get)
	field.Set = func(obj reflect.Value, v reflect.Value) {
		var f F
		if v.IsValid() {
			reflect.ValueOf(&f).Elem().Set(v)
		}
		set(obj.Addr().Interface().(*T), f)
	}
	return field
}

// ReadOnlyField declares a member of T that is computed and never persisted
func ReadOnlyField[T, F any](name string, get func(*T) F) Field {
	return Field{
		Name: name,
		Type: reflect.TypeFor[F](),
		Get: func(obj reflect.Value) reflect.Value {
			f := get(obj.Addr().Interface().(*T))
			return reflect.ValueOf(&f).Elem()
		},
	}
}

// Schema lists the members of a record type
type Schema struct {
	Type   reflect.Type
	Fields []Field
}

// NewSchema declares the members of T
func NewSchema[T any](fields ...Field) *Schema {
	return &Schema{Type: reflect.TypeFor[T](), Fields: fields}
}

// Persistable returns the members taking part in serialization
func (s *Schema) Persistable() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Persistable() {
			out = append(out, f)
		}
	}
	return out
}

// Field returns the member with the given name
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// --------------------------------------------------------------------------
// Derived Schemas
// --------------------------------------------------------------------------

// DeriveSchema builds the schema of struct T from its exported fields. It runs once
// when called, the result is a plain Schema that can still be edited before it is
// registered.
func DeriveSchema[T any]() (*Schema, error) {
	return DeriveSchemaOf(reflect.TypeFor[T]())
}

// DeriveSchemaOf is the non generic variant of DeriveSchema
func DeriveSchemaOf(t reflect.Type) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, xerrors.Errorf("typemeta: cannot derive schema of %s: not a struct", t)
	}

	schema := &Schema{Type: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := sf.Name
		skip := false
		if tag, ok := sf.Tag.Lookup(TagName); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				skip = true
			} else if tagName != "" {
				name = tagName
			}
		}

		index := sf.Index
		schema.Fields = append(schema.Fields, Field{
			Name: name,
			Type: sf.Type,
			Get: func(obj reflect.Value) reflect.Value {
				return obj.FieldByIndex(index)
			},
			Set: func(obj reflect.Value, v reflect.Value) {
				target := obj.FieldByIndex(index)
				if !v.IsValid() {
					target.SetZero()
					return
				}
				target.Set(v)
			},
			skip: skip,
		})
	}
	return schema, nil
}
