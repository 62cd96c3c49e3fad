// Package server implements the RPC server. Requests are flat messages whose command
// names a method, a Dispatcher routes them to the registered method handlers.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface for everything that turns a request message into a
//     response message. The Dispatcher is the adapter used by the server.
//
//   - Dispatcher: explicit method table. Register binds a typed function: the
//     arguments are decoded from the root key of the request into Req, the returned
//     Resp is encoded at the root key of a "result" message. Both types are checked
//     against the engine at registration time. Unknown commands are answered with
//     "missing method: <name>", errors and panics of a method with an error response.
//     Every call is timed with go-metrics, Stats returns a snapshot per method.
//
//   - NewCatalogServerAdapter: dispatcher serving catalog.put, catalog.get,
//     catalog.delete, catalog.list and catalog.has on top of a catalog.IStore.
//
//   - NewRPCServer: connects a transport, an envelope serializer and an adapter.
//
// Usage Example:
//
//	e := marshal.New(marshal.Options{})
//	adapter, err := server.NewCatalogServerAdapter(e, catalog.NewMemoryStore(e))
//	if err != nil {
//	  log.Fatal(err)
//	}
//
//	s := server.NewRPCServer(config, tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(), adapter)
//	if err := s.Serve(); err != nil {
//	  log.Fatal(err)
//	}
//
// Thread Safety:
//
//	The dispatcher table is an xsync.MapOf, methods may be registered while serving.
//	Handle is safe for concurrent use; the methods themselves must be as well.
package server
