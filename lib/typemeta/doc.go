// Package typemeta classifies Go types into the persistence categories that drive the
// flat message encoder and decoder, and holds the explicit metadata the classifier
// relies on instead of runtime introspection.
//
// The package focuses on:
//   - Deciding the category of a type with a fixed precedence
//   - An extensible parser registry for scalar types
//   - Explicit record schemas (name, type, getter, setter per member)
//   - Registered enumerations and type names for polymorphic decoding
//
// Key Components:
//
//   - Registry: Holds parsers, enumerations, schemas, type names and the memoized
//     descriptors. All tables are xsync maps, lookups are O(1) amortized.
//
//   - Classify: Precedence String, Parseable, Nullable, Dictionary, Array, Enumerable,
//     Enumeration, Interface, Other. Registered enumerations win over the parser of
//     their basic kind. Record types need a Schema, otherwise ErrNoSchema is returned.
//
//   - Schema / FieldOf / DeriveSchema: Record members. FieldOf declares a member with
//     typed accessors, DeriveSchema builds a schema once from exported struct fields
//     and honors the `flatmsg:"-"` tag.
//
//   - RegisterEnum: A closed set of named integer constants, written by name.
//
// Thread Safety:
//
//	The registry is safe for concurrent use. Descriptors are computed on first use and
//	may be computed twice by racing callers; the result is deterministic so the last
//	store wins.
package typemeta
