package typemeta

import "reflect"

// --------------------------------------------------------------------------
// Category Definition
// --------------------------------------------------------------------------

// Category is the persistence bucket of a type. It decides how the encoder and the
// decoder walk a value.
type Category uint8

const (
	CatUnknown     Category = iota
	CatString               // exactly the string type
	CatParseable            // a registered parser exists (numbers, bool, time, uuid, ...)
	CatNullable             // pointer to a value, nil means absent
	CatDictionary           // map with scalar keys
	CatArray                // fixed size array [N]T
	CatEnumerable           // slice []T, including named slice types
	CatEnumeration          // registered set of named integer constants
	CatInterface            // interface, the value type is decided at runtime
	CatOther                // record with a registered schema
)

// String returns the string representation of a Category.
func (c Category) String() string {
	switch c {
	case CatString:
		return "string"
	case CatParseable:
		return "parseable"
	case CatNullable:
		return "nullable"
	case CatDictionary:
		return "dictionary"
	case CatArray:
		return "array"
	case CatEnumerable:
		return "enumerable"
	case CatEnumeration:
		return "enumeration"
	case CatInterface:
		return "interface"
	case CatOther:
		return "other"
	default:
		return "unknown"
	}
}

// IsScalar reports whether values of the category are written as a single pair
func (c Category) IsScalar() bool {
	return c == CatString || c == CatParseable || c == CatEnumeration
}

// --------------------------------------------------------------------------
// Descriptor
// --------------------------------------------------------------------------

// Descriptor is the memoized classification of a type. Which fields are set depends on
// the category.
type Descriptor struct {
	Type     reflect.Type
	Category Category

	// Elem is the element type of arrays and slices and the underlying type of pointers
	Elem reflect.Type
	// Key and Value are the key and value types of maps
	Key   reflect.Type
	Value reflect.Type

	// Parser formats and parses String and Parseable values
	Parser *Parser
	// Enum holds the names of an Enumeration
	Enum *EnumSpec
	// Schema holds the members of Other
	Schema *Schema
}

// IsScalar reports whether the described type is written as a single pair
func (d *Descriptor) IsScalar() bool {
	return d.Category.IsScalar()
}
