// Package cmd implements the command-line interface for the triKV store
// server. It provides a hierarchical command structure with operations for
// running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for store operations (put, get, del, exists, batch, ...)
//   - serve: Commands for starting and configuring the triKV server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See trikv -help for a list of all commands.
package cmd
