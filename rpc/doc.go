// Package rpc provides remote procedure calls on top of flat messages. A request is
// a flat message whose command names the method and whose pairs hold the encoded
// arguments, the response carries the encoded result or an error.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the request/response protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP) plus a REST bridge for plain HTTP clients.
//
//   - serializer: Envelope formats (URL, Binary, JSON, BSON, GOB, YAML) for
//     converting between messages and byte arrays.
//
//   - client: The RPC client with typed calls and a remote catalog store.
//
//   - server: The RPC server, the method dispatcher and the catalog adapter.
package rpc
