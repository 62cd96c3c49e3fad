package client

import (
	"context"
	"fmt"
	"reflect"

	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/ValentinKolb/flatmsg/rpc/serializer"
	"github.com/ValentinKolb/flatmsg/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// RPCClient stores all data needed to call remote methods
// Used by the typed clients (e.g. the catalog client) with composition pattern
type RPCClient struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
	engine     *marshal.Engine
}

// NewRPCClient connects the transport and returns a client encoding arguments and
// results with e
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
	e *marshal.Engine,
) (*RPCClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}
	return &RPCClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
		engine:     e,
	}, nil
}

// Engine returns the engine used for arguments and results
func (c *RPCClient) Engine() *marshal.Engine {
	return c.engine
}

// Close closes the transport
func (c *RPCClient) Close() error {
	return c.transport.Close()
}

// Invoke sends a raw request message and returns the response message. Error
// responses are returned as *common.RemoteError.
func (c *RPCClient) Invoke(ctx context.Context, req *urlmsg.Message) (*urlmsg.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqBytes, err := c.serializer.Serialize(req)
	if err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := c.transport.Send(reqBytes)
		done <- result{data, err}
	}()

	var respBytes []byte
	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		respBytes = r.data
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	resp := urlmsg.New()
	if err := c.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("invalid response to %s: %w", req.Command, err)
	}

	if err := common.ResponseError(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Call invokes method with the arguments req and decodes the result as Resp
func Call[Req, Resp any](ctx context.Context, c *RPCClient, method string, req Req) (Resp, error) {
	var out Resp

	msg := urlmsg.NewCommand(method)
	if err := c.engine.EncodeValue(msg, urlmsg.RootKey, reflect.ValueOf(&req).Elem(), reflect.TypeFor[Req]()); err != nil {
		return out, fmt.Errorf("invalid arguments for %s: %w", method, err)
	}

	resp, err := c.Invoke(ctx, msg)
	if err != nil {
		return out, err
	}

	if err := c.engine.DecodeInto(resp, urlmsg.RootKey, &out); err != nil {
		return out, fmt.Errorf("invalid result of %s: %w", method, err)
	}
	return out, nil
}
