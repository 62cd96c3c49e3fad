// Package common provides the configuration structures, the logging setup and the
// request/response protocol shared by the RPC server, client and transports.
//
// Key Components:
//
//   - Protocol: requests and responses are flat messages (see lib/urlmsg). The request
//     Command names the remote method; a response is either a "result" message holding
//     the encoded return value at the root key or an "error" message holding the error
//     text (and an optional code). NewResultResponse, NewErrorResponse and
//     ResponseError build and inspect them.
//
//   - ServerConfig: transport endpoint and socket options, envelope serializer, store
//     backend, REST rate limit, timeouts and log level.
//
//   - ClientConfig: endpoints, retries, connection pool size and timeouts.
//
//   - Logger: custom formatter plugged into Dragonboat's logger facade, so every
//     package can log through logger.GetLogger(name) with a consistent format.
package common
