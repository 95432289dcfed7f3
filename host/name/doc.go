// Package name derives canonical lookup keys from display names and builds
// the endpoint identifiers used by the transports.
package name
