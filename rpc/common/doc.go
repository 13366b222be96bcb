// Package common provides core data structures and utilities shared across
// the RPC layer of the store system. It defines fundamental types,
// configuration structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for inter-component communication
//   - Configuration structures for client and server components
//   - A named, leveled logging implementation shared by all RPC packages
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating various request and response messages.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, categorized into store lifecycle operations, key-value operations,
//     and control messages.
//
//   - BatchOp: One entry of an atomic batch request, tagging a put or delete
//     with its column family, key and optional value.
//
//   - ServerConfig: Configuration for server processes, including engine
//     selection, storage settings, network configuration and logging.
//
//   - ClientConfig: Configuration for client components, controlling connection
//     parameters, timeouts, and retry behavior.
//
//   - Logger: Named leveled loggers with consistent formatting across the
//     application, handed out by a process-wide registry.
package common
