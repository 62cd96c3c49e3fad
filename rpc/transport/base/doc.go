// Package base provides a foundation for stream based transport layers of the RPC
// system, implementing the core client and server functionality independent of the
// specific network protocol (TCP, Unix sockets). It is extended with protocol-specific
// connectors.
//
// Frame Protocol:
//
//	8 bytes requestID (uint64, big endian)
//	4 bytes payload length (uint32, big endian)
//	N bytes payload (a serialized request or response message)
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - clientTransport: Core client implementation that manages multiple connections
//     with round-robin load balancing, retries with jittered exponential backoff and
//     reconnects broken connections.
//
//   - serverTransport: Core server implementation that accepts connections and
//     processes the requests of every connection with a bounded number of workers.
//     Responses carry the requestID of their request and may be written out of order.
//
// Performance Optimizations:
//
//   - Connection Pooling: Multiple connections per endpoint improve throughput for
//     large messages. For small messages a single connection usually performs better.
//
//   - Buffer Pooling: The server uses a sync.Pool to reuse read buffers.
//
//   - Frame Batching: net.Buffers writes header and payload with a single syscall.
//
// Thread Safety:
//
//	All public methods are thread-safe. The client transport correlates concurrent
//	requests through an xsync.MapOf of pending request channels.
package base
