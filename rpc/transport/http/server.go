package http

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/ValentinKolb/flatmsg/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

const (
	// RPCPath accepts serialized request messages
	RPCPath = "/rpc"
	// MetricsPath exposes all registered metrics in the Prometheus text format
	MetricsPath = "/metrics"
)

var requestsTotal = metrics.NewCounter(`flatmsg_http_requests_total`)

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.ServerConfig

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	t.config = config

	server := &http.Server{
		Addr:    t.config.Transport.Endpoint,
		Handler: t.Handler(),
	}
	if config.TimeoutSecond > 0 {
		server.ReadTimeout = time.Duration(config.TimeoutSecond) * time.Second
		server.WriteTimeout = time.Duration(config.TimeoutSecond) * time.Second
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.server = server
	t.mu.Unlock()

	Logger.Infof("Starting HTTP server on %s", t.config.Transport.Endpoint)

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (t *httpServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	if t.server == nil {
		return nil
	}
	return t.server.Close()
}

// Handler returns the routes of the transport, usable without Listen (e.g. in tests)
func (t *httpServerTransport) Handler() http.Handler {
	mux := http.NewServeMux()

	if t.config.LogLevel == "debug" {
		mux.HandleFunc("POST "+RPCPath, loggerMiddleware(t.handleRequest))
	} else {
		mux.HandleFunc("POST "+RPCPath, t.handleRequest)
	}
	mux.HandleFunc("GET "+MetricsPath, handleMetrics)

	return mux
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleRequest handles incoming HTTP requests and writes the response to the writer
func (t *httpServerTransport) handleRequest(w http.ResponseWriter, r *http.Request) {
	requestsTotal.Inc()

	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return
	}

	resp := t.handler(body)

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err = w.Write(resp); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}

// handleMetrics writes the metrics of the process, including Go runtime metrics
func handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	metrics.WritePrometheus(w, true)
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
