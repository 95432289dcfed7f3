package handle

import (
	"context"
	"sync"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Func is the target of an action.
type Func func(ctx context.Context, arg interface{}) (interface{}, error)

// Action is a named, invokable member of a node.
type Action struct {
	core
	fn     Func
	callMu sync.Mutex
}

// NewAction creates an action in the Created state. A nil fn makes every
// call return (nil, nil).
func NewAction(node string, n name.Name, fn Func, b binding.Binding, opts ...Option) *Action {
	ret := &Action{fn: fn}
	ret.init(node, n, KindAction, b, opts)
	return ret
}

// Call dispatches arg to the target and returns its result. Calls are
// serialized unless the action was created Reentrant.
func (a *Action) Call(ctx context.Context, arg interface{}) (interface{}, error) {
	if a.State() == StateClosed {
		return nil, a.invalidState()
	}
	if err := a.opts.validator.Validate(arg); err != nil {
		return nil, &ArgumentError{Endpoint: a.Endpoint(), Err: err}
	}
	if !a.opts.reentrant {
		a.callMu.Lock()
		defer a.callMu.Unlock()
		if a.State() == StateClosed {
			return nil, a.invalidState()
		}
	}

	ctx, span := tracer.Start(ctx, "nodel.action.call", trace.WithAttributes(
		attribute.String("nodel.node", a.node),
		attribute.String("nodel.action", a.name.Reduced),
	))
	defer span.End()

	snapshot, observers := a.record(arg)
	result, err := a.invoke(ctx, arg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	endpoint := a.Endpoint()
	for _, observer := range observers {
		observer(ctx, endpoint, snapshot)
	}
	return result, nil
}

func (a *Action) invoke(ctx context.Context, arg interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, &PanicError{Endpoint: a.Endpoint(), Value: r}
		}
	}()
	if a.fn == nil {
		return nil, nil
	}
	return a.fn(ctx, arg)
}

// Close removes the action from the directory. Calls already running finish
// normally; later calls fail with ErrInvalidState.
func (a *Action) Close() error {
	if !a.close() {
		return nil
	}
	if a.opts.release != nil {
		a.opts.release(a)
	}
	return nil
}
