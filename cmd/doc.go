// Package cmd implements the command-line interface of flatmsg. It provides a
// hierarchical command structure with operations for running the catalog server,
// interacting with it as a client and inspecting flat messages locally.
//
// The package is organized into several subpackages:
//
//   - catalog: Commands for catalog operations (put, get, del, has, list, perf)
//   - codec: Commands working on messages without a server (keys, tree, envelope, item)
//   - serve: Commands for starting and configuring the catalog server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See flatmsg -help for a list of all commands.
package cmd
