// Package transport defines the interfaces and abstractions for RPC communication
// of flatmsg. It provides a common contract that all transport
// implementations must fulfill, enabling protocol-agnostic communication.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Correlating concurrent requests and responses on one connection
//   - Enabling multiple transport implementations (HTTP, TCP, Unix sockets, REST)
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to appropriate handlers.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
package transport
