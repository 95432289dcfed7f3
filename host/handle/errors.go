package handle

import (
	"errors"
	"fmt"

	"github.com/museumsvictoria/nodel-sub003/host/name"
)

var (
	// ErrInvalidState is matched by errors raised when a closed handle is used.
	ErrInvalidState = errors.New("invalid handle state")

	// ErrInvalidArgument is matched by argument validation failures.
	ErrInvalidArgument = errors.New("invalid argument")
)

// InvalidStateError reports use of a handle that is no longer open.
type InvalidStateError struct {
	Endpoint name.Endpoint
	Kind     Kind
	State    State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %q is %s", e.Kind, e.Endpoint.Member(), e.State)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ArgumentError wraps a validation failure for one member.
type ArgumentError struct {
	Endpoint name.Endpoint
	Err      error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument for %q: %v", e.Endpoint.Member(), e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// PanicError carries a panic recovered from an action target.
type PanicError struct {
	Endpoint name.Endpoint
	Value    interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("action %q panicked: %v", e.Endpoint.Member(), e.Value)
}
