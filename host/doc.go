// Package host runs a node host: it owns the name registry and one toolkit
// per node, serves the REST dispatch front end, optionally exposes every
// action as an MCP tool and registers the actions with a fluxor workflow
// engine. Service ties these together behind Start and Stop.
package host
