// Package conv provides small helpers to move values between the shapes used
// by the transports (raw JSON, argument maps, typed structs). Convert performs
// a best-effort JSON round-trip which is enough for action arguments and
// results.
package conv
