package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/ValentinKolb/flatmsg/rpc/transport"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []string
	client     *http.Client
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Normalize each endpoint to the url of the rpc route
	urls := make([]string, len(config.Transport.Endpoints))
	for i, endpoint := range config.Transport.Endpoints {
		if !strings.Contains(endpoint, "://") {
			endpoint = "http://" + endpoint
		}
		urls[i] = strings.TrimSuffix(endpoint, "/") + RPCPath
	}

	t.client = &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	t.serverURLs = urls
	t.counter = 0
	t.retryCount = max(config.Transport.RetryCount, 1)

	return nil
}

func (t *httpClientTransport) Send(req []byte) (resp []byte, err error) {
	if t.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	for i := 0; i < t.retryCount; i++ {
		// Select the next server via round-robin
		idx := atomic.AddUint32(&t.counter, 1) % uint32(len(t.serverURLs))

		resp, err = t.post(t.serverURLs[idx], req)
		if err == nil {
			return resp, nil
		}
	}
	return nil, err
}

func (t *httpClientTransport) Close() error {
	if t.client != nil {
		t.client.CloseIdleConnections()
	}

	t.client = nil
	t.serverURLs = nil

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// post sends one request, a new body reader is needed for every attempt
func (t *httpClientTransport) post(url string, req []byte) ([]byte, error) {
	httpResponse, err := t.client.Post(url, "application/octet-stream", bytes.NewReader(req))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}
	return io.ReadAll(httpResponse.Body)
}
