package server

import (
	"context"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response
	// The command of the request names the method, its pairs hold the arguments
	// If an error occurs, it is returned as an error response
	Handle(ctx context.Context, req *urlmsg.Message) (resp *urlmsg.Message)
}
