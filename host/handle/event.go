package handle

import (
	"context"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"github.com/museumsvictoria/nodel-sub003/internal/conv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Subscriber receives emitted event values.
type Subscriber func(ctx context.Context, arg interface{})

// Event is a named, observable member of a node. Emitting notifies the
// subscribers attached at that moment; nothing is buffered or replayed.
type Event struct {
	core
	subscribers []*Subscriber
}

// NewEvent creates an event in the Created state.
func NewEvent(node string, n name.Name, b binding.Binding, opts ...Option) *Event {
	ret := &Event{}
	ret.init(node, n, KindEvent, b, opts)
	return ret
}

// Subscribe attaches fn and returns a function detaching it. Subscribing to a
// closed event is a no-op.
func (e *Event) Subscribe(fn Subscriber) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateClosed || fn == nil {
		return func() {}
	}
	entry := &fn
	e.subscribers = append(e.subscribers, entry)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, candidate := range e.subscribers {
			if candidate == entry {
				e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of attached subscribers.
func (e *Event) Subscribers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subscribers)
}

// Emit records arg and notifies every current subscriber.
func (e *Event) Emit(ctx context.Context, arg interface{}) error {
	_, err := e.emit(ctx, arg, false)
	return err
}

// EmitIfDifferent emits only when arg differs from the last emitted value.
// It reports whether an emission took place.
func (e *Event) EmitIfDifferent(ctx context.Context, arg interface{}) (bool, error) {
	return e.emit(ctx, arg, true)
}

func (e *Event) emit(ctx context.Context, arg interface{}, onlyIfDifferent bool) (bool, error) {
	if err := e.opts.validator.Validate(arg); err != nil {
		return false, &ArgumentError{Endpoint: e.Endpoint(), Err: err}
	}

	e.mu.Lock()
	if e.state == StateClosed {
		e.mu.Unlock()
		return false, e.invalidState()
	}
	if onlyIfDifferent && e.last.Seq > 0 && conv.Equal(e.last.Arg, arg) {
		e.mu.Unlock()
		return false, nil
	}
	e.last = Snapshot{Arg: arg, Seq: e.last.Seq + 1, Timestamp: e.opts.clock()}
	snapshot := e.last
	subscribers := make([]Subscriber, 0, len(e.subscribers))
	for _, s := range e.subscribers {
		subscribers = append(subscribers, *s)
	}
	observers := e.observerList()
	e.mu.Unlock()

	ctx, span := tracer.Start(ctx, "nodel.event.emit", trace.WithAttributes(
		attribute.String("nodel.node", e.node),
		attribute.String("nodel.event", e.name.Reduced),
		attribute.Int("nodel.subscribers", len(subscribers)),
	))
	defer span.End()

	for _, subscriber := range subscribers {
		subscriber(ctx, arg)
	}
	endpoint := e.Endpoint()
	for _, observer := range observers {
		observer(ctx, endpoint, snapshot)
	}
	return true, nil
}

// Close detaches all subscribers and removes the event from the directory.
func (e *Event) Close() error {
	if !e.close() {
		return nil
	}
	e.mu.Lock()
	e.subscribers = nil
	e.mu.Unlock()
	if e.opts.release != nil {
		e.opts.release(e)
	}
	return nil
}
