package host

import "errors"

var (
	// ErrNodeExists is returned when a node with the same reduced name is hosted.
	ErrNodeExists = errors.New("node already exists")
	// ErrNodeNotFound is returned for operations on a node that is not hosted.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEmptyNodeName is returned when a node name reduces to nothing.
	ErrEmptyNodeName = errors.New("node name is empty")
	// ErrRemoteNotFound is returned when rewiring an undeclared remote member.
	ErrRemoteNotFound = errors.New("remote member not found")
)
