// Package server implements the RPC server for the store system.
// It provides the adapter that handles RPC requests against local stores,
// along with the core server implementation that manages store handles and
// request routing.
//
// The package focuses on:
//   - Server-side RPC request handling for store lifecycle and KV operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Handle-based store addressing via a shared registry
//   - Request and error counters exported in Prometheus format
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests.
//
//   - NewStoreServerAdapter: Factory function creating the adapter that maps
//     messages onto store operations. Stores opened through the adapter are
//     registered in a handle registry and addressed by handle afterwards.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Engine: common.EngineTypePebble,
//	  DataDir: "/var/lib/trikv",
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// The server supports two engine types, selected via ServerConfig.Engine:
//
//   - EngineTypePebble: Persistent stores backed by pebble, the default.
//     Store paths are resolved below DataDir unless absolute.
//
//   - EngineTypeMemKV: Volatile in-memory stores, suitable for tests and
//     caching workloads.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	The Listen method is not thread-safe and should be called only once.
package server
