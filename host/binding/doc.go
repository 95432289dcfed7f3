// Package binding holds the metadata attached to actions and events when they
// are created. The registry stores it without looking inside; the transports
// use it to describe members and to validate arguments.
package binding
