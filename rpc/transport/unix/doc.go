// Package unix implements a transport layer for the RPC system using Unix domain
// sockets. It provides low overhead communication for processes running on the same
// machine.
//
// This package extends the base transport layer with Unix socket-specific connectors
// while inheriting connection pooling, request correlation and error handling from the
// base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners, an existing socket file at the
//     endpoint path is removed first
//
// The default server buffer size is 64 KB.
package unix
