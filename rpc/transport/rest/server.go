package rest

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/ValentinKolb/flatmsg/rpc/serializer"
	"github.com/ValentinKolb/flatmsg/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/time/rate"
)

var Logger = logger.GetLogger("rest")

var (
	restRequestsTotal    = metrics.NewCounter(`flatmsg_rest_requests_total`)
	restRateLimitedTotal = metrics.NewCounter(`flatmsg_rest_rate_limited_total`)
)

// Response is the JSON body of every answer of the bridge
type Response struct {
	// Command is the response command, "result" or "error"
	Command string `json:"command"`
	// Pairs are the flat pairs of the response in message order
	Pairs []Pair `json:"pairs"`
	// Value is the nested view of the pairs, see Tree
	Value any `json:"value,omitempty"`
	// Error is set for error responses and failures of the bridge itself
	Error string `json:"error,omitempty"`
}

// Pair is one flat pair of a response
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewRESTServerTransport creates a REST bridge in front of the RPC handler. Requests
// are translated into messages and passed to the handler in the envelope format of s.
func NewRESTServerTransport(s serializer.IRPCSerializer) transport.IRPCServerTransport {
	return &restServerTransport{serializer: s}
}

// restServerTransport implements transport.IRPCServerTransport with a gin router
type restServerTransport struct {
	serializer serializer.IRPCSerializer
	handler    transport.ServerHandleFunc
	config     common.ServerConfig

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *restServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *restServerTransport) Listen(config common.ServerConfig) error {
	t.config = config

	server := &http.Server{
		Addr:    config.Transport.Endpoint,
		Handler: t.Router(),
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

	Logger.Infof("Starting REST bridge on %s", config.Transport.Endpoint)

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (t *restServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	if t.server == nil {
		return nil
	}
	return t.server.Close()
}

// --------------------------------------------------------------------------
// Routes
// --------------------------------------------------------------------------

// Router builds the gin engine of the bridge for the current config
func (t *restServerTransport) Router() *gin.Engine {
	if t.config.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if t.config.LogLevel == "debug" {
		r.Use(gin.Logger())
	}
	if t.config.RateLimit > 0 {
		burst := t.config.RateBurst
		if burst < 1 {
			burst = 1
		}
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(t.config.RateLimit), burst)))
	}

	r.POST("/call/:command", t.handleCall)
	r.GET("/call/:command", t.handleCall)
	r.GET("/metrics", func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		metrics.WritePrometheus(c.Writer, true)
	})

	return r
}

// handleCall translates the query and a form-urlencoded body into a request message,
// runs it through the handler and answers the response message as JSON
func (t *restServerTransport) handleCall(c *gin.Context) {
	restRequestsTotal.Inc()

	req, err := requestMessage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Command: common.CmdError, Error: err.Error()})
		return
	}

	data, err := t.serializer.Serialize(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Command: common.CmdError, Error: err.Error()})
		return
	}

	resp := urlmsg.New()
	if err := t.serializer.Deserialize(t.handler(data), resp); err != nil {
		c.JSON(http.StatusBadGateway, Response{Command: common.CmdError, Error: err.Error()})
		return
	}

	out := Response{
		Command: resp.Command,
		Pairs:   make([]Pair, 0, resp.Len()),
	}
	for _, p := range resp.Pairs() {
		out.Pairs = append(out.Pairs, Pair{Key: p.Key, Value: p.Value})
	}

	status := http.StatusOK
	if err := common.ResponseError(resp); err != nil {
		out.Error = resp.Value(common.ErrorKey)
		status = http.StatusUnprocessableEntity
	} else if resp.Len() > 0 {
		out.Value = Tree(resp)
	}
	c.JSON(status, out)
}

// requestMessage reads the pairs of the query followed by the pairs of the body. The
// raw encodings are parsed directly to keep the order of the pairs.
func requestMessage(c *gin.Context) (*urlmsg.Message, error) {
	msg := urlmsg.NewCommand(c.Param("command"))

	sources := []string{c.Request.URL.RawQuery}
	if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		sources = append(sources, string(body))
	}

	for _, raw := range sources {
		if raw == "" {
			continue
		}
		parsed, err := urlmsg.Parse(raw, urlmsg.DefaultSeparator)
		if err != nil {
			return nil, err
		}
		if parsed.Command != "" {
			return nil, errors.New("malformed pairs: " + raw)
		}
		for _, p := range parsed.Pairs() {
			if msg.Has(p.Key) {
				return nil, errors.New("duplicate key: " + p.Key)
			}
			msg.Set(p.Key, p.Value)
		}
	}
	return msg, nil
}

// rateLimit rejects requests exceeding the limiter with 429
func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			restRateLimitedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Command: common.CmdError, Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
