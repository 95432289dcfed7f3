// Package dispatch is the HTTP front end of the node host. It resolves a node
// and member name from the request path, looks the member up in the registry
// and invokes the action or reads and emits the event. Unresolved endpoints
// are answered with 404.
package dispatch
