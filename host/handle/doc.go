// Package handle implements the named members a node exposes: actions, which
// are invoked with one argument, and events, which notify their current
// subscribers when emitted.
//
// Both kinds share the same lifecycle. A handle starts Created, becomes
// Registered when the registry accepts it and ends Closed. Close is
// idempotent and releases the registry entry before returning.
package handle
