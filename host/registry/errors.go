package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is matched when a reduced name is already bound.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrNotFound is matched when nothing is registered under a key.
	ErrNotFound = errors.New("not found")
)

// DuplicateNameError reports a registration colliding with an open handle.
type DuplicateNameError struct {
	Key Key
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("already bound - %s", e.Key)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// NotFoundError carries the endpoint that could not be resolved.
type NotFoundError struct {
	Endpoint string
	Key      Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("'%s' not found.", e.Endpoint)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError reports an unresolved endpoint that has no key, such as an
// unknown node.
func NewNotFoundError(endpoint string) *NotFoundError {
	return &NotFoundError{Endpoint: endpoint}
}
