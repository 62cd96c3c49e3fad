// Package marshal flattens Go values into urlmsg messages and reconstructs them.
//
// A value is written below a structural key. Scalars (strings, parseable values and
// enumerations) become one pair, everything else is walked depth first:
//
//	Name=Widget&Tags[0]=a&Tags[1]=b&Price=9.99&Stock[x]=1&Dims.Width=2
//
// The Engine dispatches on the category computed by the typemeta registry. Custom
// serializers take precedence over the category on both sides, coercions bridge a
// member's actual type and the type it is declared to be written as, and
// instantiators create the instances records, maps and slices are decoded into.
//
// Encoding rules:
//
//   - nil values write nothing, the absence of a key means nil or the default value
//   - scalars with an empty string form are omitted unless Options.KeepEmpty is set
//   - maps write key[k] with the URL encoded map key, ordered by that key
//   - arrays and slices write key[i]
//   - records write key.member for every persistable member of their schema
//   - interface values write key$T$ with the name of their dynamic type
//
// Decoding never fails on missing keys. It fails on malformed scalars, unknown type
// names, failing custom serializers and coercions, and graphs deeper than
// Options.MaxDepth.
//
// Usage:
//
//	e := marshal.New(marshal.Options{})
//	_ = marshal.RegisterDerived[Widget](e)
//	msg, err := marshal.Marshal(e, Widget{Name: "Widget"})
//	w, err := marshal.Unmarshal[Widget](e, msg)
//
// Metrics:
//
//	flatmsg_marshal_encode_total, flatmsg_marshal_decode_total and their _errors_total
//	counterparts, flatmsg_marshal_custom_serializer_total.
package marshal
