// Package tcp implements a TCP socket based transport for the RPC system. It provides
// concrete implementations of the base package's connector interfaces.
//
// This package builds on the base package's transport functionality, inheriting its
// connection pooling, buffer reuse and request correlation. See the base package
// documentation for details on the frame protocol.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// Both sides apply TCPConf (no delay, keep-alive, linger) and SocketConf (buffer
// sizes) to every connection. The default server buffer size is 512 KB.
package tcp
