// Package cmd implements the sub-commands of the nodel host command-line
// interface. Each file registers a single sub-command (serve, call, emit,
// list-nodes, ...); configuration loading and service initialisation shared
// between them live in shared.go.
package cmd
