// Package urlmsg implements the flat key/value message that every value of the
// system is marshalled into, together with the structural key scheme used to address
// positions inside a flattened object graph.
//
// The package focuses on:
//   - An ordered, unique-key message with an optional command name
//   - A URL-encoded wire format with a configurable pair separator
//   - Building and parsing structural keys (name, name[idx], name.field, name[key].field)
//
// Key Components:
//
//   - Message: Ordered collection of string pairs. Command carries the name of a
//     remote operation when the message is a request.
//
//   - String / Parse: Wire format. Grammar:
//
//     message := [command "?"] pairs
//     pairs   := pair (SEP pair)*
//     pair    := key "=" value
//
//     Keys, values and the command are percent-encoded. SEP defaults to '&'.
//
//   - FormatKey / FormatIndexKey / FormatMapKey: Build structural keys. The empty key
//     is the root marker "."; members of the root are addressed by their bare name and
//     top level collections as [i].
//
//   - ParseChildKeys / ParseIndexKeys: Discover the children of a key. Map indices are
//     URL-decoded, numeric indices are sorted ascending.
//
// Thread Safety:
//
//	A Message is not safe for concurrent mutation. The key functions are pure.
//
// Usage:
//
//	msg := urlmsg.NewCommand("catalog.put")
//	msg.Set(urlmsg.FormatIndexKey("Tags", 0), "a")
//	wire := msg.String() // catalog.put?Tags%5B0%5D=a
//	parsed, err := urlmsg.Parse(wire, 0)
package urlmsg
