package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tr := NewHttpServerTransport().(*httpServerTransport)
	tr.RegisterHandler(func(req []byte) []byte {
		return append([]byte("echo:"), req...)
	})
	srv := httptest.NewServer(tr.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServerHandler(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+RPCPath, "application/octet-stream", bytes.NewReader([]byte("ping")))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "echo:ping", string(body))

	resp, err = http.Get(srv.URL + RPCPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+RPCPath, "application/octet-stream", bytes.NewReader(nil))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + MetricsPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "flatmsg_http_requests_total")
}

func TestClientTransport(t *testing.T) {
	srv := newTestServer(t)

	c := NewHttpClientTransport()
	require.NoError(t, c.Connect(common.ClientConfig{
		TimeoutSecond: 2,
		Transport:     common.ClientTransportConfig{Endpoints: []string{srv.URL + "/"}},
	}))
	defer c.Close()

	resp, err := c.Send([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hello", string(resp))

	assert.Error(t, NewHttpClientTransport().Connect(common.ClientConfig{}))
}
