// Package client implements the RPC client for the store system.
// It provides handle-bound store access that communicates with remote
// servers via RPC.
//
// The package focuses on:
//   - Transparent RPC access to remote stores
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCClient: Factory function that creates a client bound to one or
//     more server endpoints via the configured transport layer.
//
//   - Client.Open: Opens a store on the server and returns a RemoteStore
//     bound to the allocated handle.
//
//   - RemoteStore: Mirrors the server-side store operations (Get, Put,
//     Delete, Exists, Apply, IsOpen, Path, Families, Close) over RPC.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:5000"},
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	}
//
//	// Create the client
//	c, _ := client.NewRPCClient(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//
//	// Open and use a store
//	s, _ := c.Open("graph")
//	s.Put("spo", []byte("mykey"), []byte("myvalue"))
//	value, found, _ := s.Get("spo", []byte("mykey"))
//	s.Close()
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
