package serve

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdUtil "github.com/trikv-io/triKV/cmd/util"
	"github.com/trikv-io/triKV/rpc/common"
	"github.com/trikv-io/triKV/rpc/serializer"
	"github.com/trikv-io/triKV/rpc/server"
	"github.com/trikv-io/triKV/rpc/transport"
	"github.com/trikv-io/triKV/rpc/transport/http"
	"github.com/trikv-io/triKV/rpc/transport/tcp"
	"github.com/trikv-io/triKV/rpc/transport/unix"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the triKV server",
		Long:    `Start the triKV server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is TRIKV_<flag> (e.g. TRIKV_ENGINE=memkv)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "engine"
	ServeCmd.PersistentFlags().String(key, "pebble", cmdUtil.WrapString("Engine backing the stores this server opens. One of: pebble, memkv"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("Directory below which relative store paths are resolved"))

	key = "sync"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether the pebble engine syncs writes to stable storage. Ignored by the memkv engine"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Request timeout in seconds"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/trikv.sock, ...)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse engine type
	switch engine := viper.GetString("engine"); engine {
	case "pebble":
		serveCmdConfig.Engine = common.EngineTypePebble
	case "memkv":
		serveCmdConfig.Engine = common.EngineTypeMemKV
	default:
		return fmt.Errorf("invalid engine: %s (expected one of: pebble, memkv)", engine)
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.Sync = viper.GetBool("sync")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the triKV server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// Parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPServerTransport()
	case "unix":
		t = unix.NewUnixDefaultServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("trikv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
