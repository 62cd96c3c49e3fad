package typemeta

import (
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/xerrors"
)

var (
	// ErrNoSchema is returned when a record type is classified that has no schema
	ErrNoSchema = xerrors.New("typemeta: no schema registered")
	// ErrUnsupportedType is returned for channels, functions and maps with non scalar keys
	ErrUnsupportedType = xerrors.New("typemeta: unsupported type")
	// ErrUnknownTypeName is returned when a type name is not registered
	ErrUnknownTypeName = xerrors.New("typemeta: unknown type name")
)

var stringType = reflect.TypeFor[string]()

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// Registry holds everything the classifier needs to know about types: parsers,
// enumerations, record schemas and type names, plus the memoized descriptors.
//
// All tables are concurrent maps. Registrations are expected at startup; a
// registration drops the memoized descriptors so later lookups see it.
type Registry struct {
	parsers     *xsync.MapOf[reflect.Type, Parser]
	enums       *xsync.MapOf[reflect.Type, *EnumSpec]
	schemas     *xsync.MapOf[reflect.Type, *Schema]
	names       *xsync.MapOf[string, reflect.Type]
	typeNames   *xsync.MapOf[reflect.Type, string]
	descriptors *xsync.MapOf[reflect.Type, *Descriptor]
}

// NewRegistry creates a registry with the builtin parsers and type names
func NewRegistry() *Registry {
	r := &Registry{
		parsers:     xsync.NewMapOf[reflect.Type, Parser](),
		enums:       xsync.NewMapOf[reflect.Type, *EnumSpec](),
		schemas:     xsync.NewMapOf[reflect.Type, *Schema](),
		names:       xsync.NewMapOf[string, reflect.Type](),
		typeNames:   xsync.NewMapOf[reflect.Type, string](),
		descriptors: xsync.NewMapOf[reflect.Type, *Descriptor](),
	}

	for t, p := range builtinTypeParsers() {
		r.parsers.Store(t, p)
		r.RegisterName(QualifiedName(t), t)
	}
	for _, v := range []any{
		"", false, 0, int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0), complex64(0), complex128(0),
	} {
		t := reflect.TypeOf(v)
		r.RegisterName(QualifiedName(t), t)
	}
	return r
}

// RegisterParser registers a parser for exactly type t
func (r *Registry) RegisterParser(t reflect.Type, p Parser) {
	r.parsers.Store(t, p)
	r.invalidate()
}

// RegisterSchema registers the members of a record type. The type is also registered
// under its qualified name for polymorphic decoding.
func (r *Registry) RegisterSchema(s *Schema) {
	r.schemas.Store(s.Type, s)
	r.RegisterName(QualifiedName(s.Type), s.Type)
	r.invalidate()
}

// Schema returns the registered schema of t
func (r *Registry) Schema(t reflect.Type) (*Schema, bool) {
	return r.schemas.Load(t)
}

// RegisterName associates a type with a name. The last registration of a name wins.
func (r *Registry) RegisterName(name string, t reflect.Type) {
	r.names.Store(name, t)
	r.typeNames.Store(t, name)
}

// TypeByName resolves a registered type name
func (r *Registry) TypeByName(name string) (reflect.Type, error) {
	if t, ok := r.names.Load(name); ok {
		return t, nil
	}
	return nil, xerrors.Errorf("%w: %q", ErrUnknownTypeName, name)
}

// NameOf returns the registered name of t
func (r *Registry) NameOf(t reflect.Type) (string, bool) {
	return r.typeNames.Load(t)
}

// invalidate drops all memoized descriptors
func (r *Registry) invalidate() {
	r.descriptors.Clear()
}

// QualifiedName returns the package path qualified name of t, e.g.
// github.com/ValentinKolb/flatmsg/lib/catalog.Item. Unnamed types use their literal.
func QualifiedName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// --------------------------------------------------------------------------
// Classification
// --------------------------------------------------------------------------

// Classify returns the memoized descriptor of t. The first call per type computes it,
// concurrent first calls may compute it twice, the last store wins.
func (r *Registry) Classify(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, xerrors.Errorf("%w: nil type", ErrUnsupportedType)
	}
	if d, ok := r.descriptors.Load(t); ok {
		return d, nil
	}

	d, err := r.classify(t)
	if err != nil {
		return nil, err
	}
	r.descriptors.Store(t, d)
	return d, nil
}

// classify applies the category precedence, first match wins
func (r *Registry) classify(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{Type: t}

	// 1. String
	if t == stringType {
		d.Category = CatString
		d.Parser = &stringParser
		return d, nil
	}

	// 2. Parseable (exact registrations)
	if p, ok := r.parsers.Load(t); ok {
		d.Category = CatParseable
		d.Parser = &p
		return d, nil
	}

	// Registered enumerations are more specific than the parser of their kind
	if e, ok := r.enums.Load(t); ok {
		d.Category = CatEnumeration
		d.Enum = e
		return d, nil
	}

	// 2. Parseable (basic kinds, including named types)
	if p, ok := kindParser(t); ok {
		d.Category = CatParseable
		d.Parser = &p
		return d, nil
	}

	switch t.Kind() {
	// 3. Nullable
	case reflect.Pointer:
		d.Category = CatNullable
		d.Elem = t.Elem()
		return d, nil

	// 4. Dictionary
	case reflect.Map:
		key, err := r.Classify(t.Key())
		if err != nil {
			return nil, err
		}
		if !key.IsScalar() {
			return nil, xerrors.Errorf("%w: map key %s of %s is not a scalar", ErrUnsupportedType, t.Key(), t)
		}
		d.Category = CatDictionary
		d.Key = t.Key()
		d.Value = t.Elem()
		return d, nil

	// 5. Array
	case reflect.Array:
		d.Category = CatArray
		d.Elem = t.Elem()
		return d, nil

	// 6. Enumerable
	case reflect.Slice:
		d.Category = CatEnumerable
		d.Elem = t.Elem()
		return d, nil

	case reflect.Interface:
		d.Category = CatInterface
		return d, nil

	// 8. Other
	case reflect.Struct:
		s, ok := r.schemas.Load(t)
		if !ok {
			return nil, xerrors.Errorf("%w: %s", ErrNoSchema, t)
		}
		d.Category = CatOther
		d.Schema = s
		return d, nil
	}

	return nil, xerrors.Errorf("%w: %s", ErrUnsupportedType, t)
}

// --------------------------------------------------------------------------
// Scalar Conversion
// --------------------------------------------------------------------------

// FormatScalar renders a String, Parseable or Enumeration value
func (r *Registry) FormatScalar(d *Descriptor, v reflect.Value) (string, error) {
	switch d.Category {
	case CatString, CatParseable:
		return d.Parser.Format(v), nil
	case CatEnumeration:
		return d.Enum.Format(v), nil
	default:
		return "", xerrors.Errorf("typemeta: %s is not a scalar (%s)", d.Type, d.Category)
	}
}

// ParseScalar reads a String, Parseable or Enumeration value
func (r *Registry) ParseScalar(d *Descriptor, s string) (reflect.Value, error) {
	switch d.Category {
	case CatString, CatParseable:
		return d.Parser.Parse(s)
	case CatEnumeration:
		return d.Enum.Parse(s)
	default:
		return reflect.Value{}, xerrors.Errorf("typemeta: %s is not a scalar (%s)", d.Type, d.Category)
	}
}
