package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/trikv-io/triKV/lib/engine"
	"github.com/trikv-io/triKV/lib/engine/engines/memkv"
	"github.com/trikv-io/triKV/lib/engine/engines/pebbledb"
	"github.com/trikv-io/triKV/lib/handles"
	"github.com/trikv-io/triKV/rpc/common"
	"github.com/trikv-io/triKV/rpc/serializer"
	"github.com/trikv-io/triKV/rpc/transport"
)

var Logger = common.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		registry:   handles.NewRegistry(),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	registry   *handles.Registry
	adapter    IRPCServerAdapter
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(storeID uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Decode the request
		err := s.serializer.Deserialize(req, &msg)

		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to deserialize request: %s", err),
			}
		} else {
			// The frame-level store ID wins over the message field so that
			// transports routing by path or frame header stay authoritative
			if storeID != 0 {
				msg.StoreID = storeID
			}

			countRequest(msg.MsgType)

			// Let the adapter handle the request
			start := time.Now()
			respMsg = *s.adapter.Handle(&msg)
			observeDuration(msg.MsgType, start)

			if respMsg.Err != "" {
				countError(msg.MsgType)
			}
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			}
			val, _ = s.serializer.Serialize(respMsg)
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	// Select the engine factory for stores opened by this server
	var factory engine.Factory
	switch s.config.Engine {
	case common.EngineTypeMemKV:
		factory = memkv.Factory(nil)
	case common.EngineTypePebble, "":
		factory = pebbledb.Factory(&pebbledb.DBOptions{Sync: s.config.Sync})
	default:
		return fmt.Errorf("invalid engine type: %s", s.config.Engine)
	}

	s.adapter = NewStoreServerAdapter(s.registry, factory, s.config.DataDir)

	Logger.Infof("triKV setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	defer func() {
		// Tear down every store still registered when the listener stops
		if err := s.registry.CloseAll(); err != nil {
			Logger.Errorf("failed to close stores on shutdown: %v", err)
		}
	}()
	return s.transport.Listen(s.config)
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// countRequest increments the request counter for the given operation
func countRequest(t common.MessageType) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`trikv_rpc_requests_total{op=%q}`, t.String())).Inc()
}

// countError increments the error counter for the given operation
func countError(t common.MessageType) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`trikv_rpc_errors_total{op=%q}`, t.String())).Inc()
}

// observeDuration records the handling time of a request
func observeDuration(t common.MessageType, start time.Time) {
	metrics.GetOrCreateSummary(fmt.Sprintf(`trikv_rpc_request_duration_seconds{op=%q}`, t.String())).UpdateDuration(start)
}
