package server

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/ValentinKolb/flatmsg/rpc/serializer"
	"github.com/ValentinKolb/flatmsg/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport, serializer and the adapter handling the requests
//
// Usage:
//
//	adapter, err := server.NewCatalogServerAdapter(marshal.New(marshal.Options{}), store)
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewBinarySerializer(),
//		adapter,
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	adapter IRPCServerAdapter,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Debugf(config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		adapter:    adapter,
	}
}

// RPCServer connects a transport, a serializer and an adapter
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	adapter    IRPCServerAdapter
}

// Handle deserializes a request, lets the adapter handle it and serializes the
// response. Failures are answered with an error response.
func (s *RPCServer) Handle(req []byte) []byte {
	var resp *urlmsg.Message

	msg := urlmsg.New()
	if err := s.serializer.Deserialize(req, msg); err != nil {
		resp = common.NewErrorResponse(fmt.Errorf("failed to deserialize request: %w", err))
	} else {
		ctx := context.Background()
		if s.config.TimeoutSecond > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.TimeoutSecond)*time.Second)
			defer cancel()
		}
		resp = s.adapter.Handle(ctx, msg)
	}

	val, err := s.serializer.Serialize(resp)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(common.NewErrorResponse(fmt.Errorf("failed to serialize response: %w", err)))
	}
	return val
}

// Serve starts the RPC server
// It registers the handler at the transport and blocks until the transport is closed
func (s *RPCServer) Serve() error {
	s.transport.RegisterHandler(s.Handle)
	return s.transport.Listen(s.config)
}

// Close stops the transport
func (s *RPCServer) Close() error {
	return s.transport.Close()
}
