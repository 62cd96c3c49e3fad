// Package http implements an HTTP-based transport layer for the RPC system. It provides
// concrete implementations of the transport interfaces defined in the parent package.
//
// Routes:
//
//   - POST /rpc: the body is a serialized request message, the response body the
//     serialized response message.
//
//   - GET /metrics: all VictoriaMetrics counters of the process (engine, coercion,
//     transport) in the Prometheus text exposition format.
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport, selecting endpoints round
//     robin and retrying failed requests on the next endpoint.
//
//   - httpServerTransport: Implements IRPCServerTransport on a net/http server. Its
//     Handler can be mounted without Listen, e.g. into httptest.
//
// Thread Safety:
//
//	The client transport is thread-safe after Connect. It uses an atomic counter for
//	the round-robin selection.
package http
