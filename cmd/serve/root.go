package serve

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	cmdUtil "github.com/ValentinKolb/flatmsg/cmd/util"
	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/ValentinKolb/flatmsg/rpc/serializer"
	"github.com/ValentinKolb/flatmsg/rpc/server"
	"github.com/ValentinKolb/flatmsg/rpc/transport"
	"github.com/ValentinKolb/flatmsg/rpc/transport/http"
	"github.com/ValentinKolb/flatmsg/rpc/transport/rest"
	"github.com/ValentinKolb/flatmsg/rpc/transport/tcp"
	"github.com/ValentinKolb/flatmsg/rpc/transport/unix"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the flatmsg catalog server",
		Long:    `Start the flatmsg catalog server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is FLATMSG_<flag> (e.g. FLATMSG_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/flatmsg.sock, ...)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds of a single request"))

	key = "store"
	ServeCmd.PersistentFlags().String(key, string(common.StoreTypeMemory), cmdUtil.WrapString("The catalog backend (memory, redis)"))

	key = "redis-url"
	ServeCmd.PersistentFlags().String(key, "redis://localhost:6379/0", cmdUtil.WrapString("Connection URL of the redis backend (only for --store=redis)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("Maximum concurrent requests per connection (only for tcp and unix)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, 64, cmdUtil.WrapString("The size of the frame buffer of a connection (in KB, only for tcp and unix)"))

	key = "rate-limit"
	ServeCmd.PersistentFlags().Float64(key, 0, cmdUtil.WrapString("Allowed requests per second of the rest bridge, 0 disables the limit"))

	key = "rate-burst"
	ServeCmd.PersistentFlags().Int(key, 10, cmdUtil.WrapString("Burst size of the rate limit of the rest bridge"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Transport.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Transport.WorkersPerConn = viper.GetInt("workers-per-conn")
	serveCmdConfig.Serializer = viper.GetString("serializer")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.RedisURL = viper.GetString("redis-url")
	serveCmdConfig.RateLimit = viper.GetFloat64("rate-limit")
	serveCmdConfig.RateBurst = viper.GetInt("rate-burst")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	switch store := common.StoreType(strings.ToLower(viper.GetString("store"))); store {
	case common.StoreTypeMemory, common.StoreTypeRedis:
		serveCmdConfig.Store = store
	default:
		return fmt.Errorf("invalid store %s (expected one of: memory, redis)", store)
	}

	if serveCmdConfig.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the flatmsg server and blocks until it is stopped by a signal
func run(_ *cobra.Command, _ []string) error {
	s, err := serializer.ByName(serveCmdConfig.Serializer)
	if err != nil {
		return err
	}

	t, err := newTransport(viper.GetString("transport"), s, viper.GetInt("buffer-size")*1024)
	if err != nil {
		return err
	}

	e := marshal.New(marshal.Options{})
	store, err := newStore(serveCmdConfig, e)
	if err != nil {
		return err
	}

	adapter, err := server.NewCatalogServerAdapter(e, store)
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(*serveCmdConfig, t, s, adapter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		server.Logger.Infof("Shutting down")
		_ = serv.Close()
	}()

	return serv.Serve()
}

// newTransport creates the server transport with the given name
func newTransport(name string, s serializer.IRPCSerializer, bufferSize int) (transport.IRPCServerTransport, error) {
	switch name {
	case "http":
		return http.NewHttpServerTransport(), nil
	case "rest":
		return rest.NewRESTServerTransport(s), nil
	case "tcp":
		return tcp.NewTCPServerTransport(bufferSize), nil
	case "unix":
		return unix.NewUnixServerTransport(bufferSize), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// newStore creates the catalog backend selected by the config
func newStore(config *common.ServerConfig, e *marshal.Engine) (catalog.IStore, error) {
	switch config.Store {
	case common.StoreTypeRedis:
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return catalog.NewRedisStore(e, redis.NewClient(opts)), nil
	default:
		return catalog.NewMemoryStore(e), nil
	}
}
