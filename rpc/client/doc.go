// Package client implements the client side of the RPC system. It turns typed calls
// into request messages, sends them through a transport in an envelope format and
// decodes the result messages.
//
// Key Components:
//
//   - RPCClient: holds the transport, the serializer and the marshal engine. Invoke
//     sends raw messages, error responses become *common.RemoteError.
//
//   - Call: generic typed call. The arguments are encoded at the root of the request,
//     the result is decoded from the root of the response.
//
//   - NewRPCCatalog: catalog.IStore implementation calling a remote catalog service.
//     Catalog return codes survive the round trip as *catalog.Error.
//
// Usage Example:
//
//	c, err := client.NewRPCClient(config, tcp.NewTCPClientTransport(),
//	    serializer.NewBinarySerializer(), marshal.New(marshal.Options{}))
//	store, err := client.NewRPCCatalog(c)
//	err = store.Put(ctx, item)
//
// Thread Safety:
//
//	The client is safe for concurrent use if the transport is.
package client
