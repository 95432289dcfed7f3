// Package schema converts binding schemas into the shapes the transports
// need: MCP tool input schemas and dynamically generated Go types for
// workflow signatures.
package schema
