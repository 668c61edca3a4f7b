// Package main hosts the statewatch CLI entrypoint and command graph.
//
// The Cobra-based command tree covers record and directory maintenance,
// the save pipeline, inbox reading, channel diagnostics, and the HTTP
// API server. It centralizes configuration resolution, data-directory
// locking, and structured logging setup so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
