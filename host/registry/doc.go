// Package registry is the directory mapping (node, kind, reduced name) to the
// live action or event handle serving it. It is constructed explicitly and
// shared by the toolkits that write to it and the transports that read it.
package registry
