package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Transport configuration structs
// --------------------------------------------------------------------------

// SocketConf holds the buffer sizes of stream based transports (tcp, unix)
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds the options only applied to tcp connections
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ServerTransportConfig configures the listening side of a transport
type ServerTransportConfig struct {
	// Endpoint is the listen address, e.g. :8080 or /tmp/flatmsg.sock
	Endpoint string
	// WorkersPerConn limits the concurrent requests of one connection
	WorkersPerConn int
	SocketConf
	TCPConf
}

// ClientTransportConfig configures the connecting side of a transport
type ClientTransportConfig struct {
	Endpoints              []string
	RetryCount             int
	ConnectionsPerEndpoint int
	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// ServerConfig holds all configuration parameters of the RPC server.
type ServerConfig struct {
	Transport ServerTransportConfig

	// Serializer is the name of the envelope format, see serializer.ByName
	Serializer string

	// Store selects the catalog backend, RedisURL is used by StoreTypeRedis
	Store    StoreType
	RedisURL string

	// RateLimit is the allowed requests per second of the REST bridge, 0 disables it
	RateLimit float64
	RateBurst int

	TimeoutSecond int64

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Serializer", c.Serializer)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(c.Transport.WorkersPerConn))

	// Store
	addSection("Store")
	addField("Type", string(c.Store))
	if c.Store == StoreTypeRedis {
		addField("Redis URL", redactURL(c.RedisURL))
	}

	// Rate limit
	if c.RateLimit > 0 {
		addSection("Rate Limit")
		addField("Requests Per Second", strconv.FormatFloat(c.RateLimit, 'g', -1, 64))
		addField("Burst", strconv.Itoa(c.RateBurst))
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// redactURL hides the password of a connection URL
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return raw
	}
	user, _, _ := strings.Cut(creds, ":")
	return scheme + "://" + user + ":***@" + host
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
