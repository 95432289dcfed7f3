package toolkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/internal/conv"
)

// ErrClosed is returned by create calls after DisposeAll.
var ErrClosed = errors.New("node is closed")

// Toolkit creates and owns the handles of one node.
type Toolkit struct {
	node     string
	registry *registry.Registry
	logger   *slog.Logger
	validate bool
	observer handle.Observer

	mu     sync.Mutex
	closed bool
	owned  map[handle.Handle]struct{}

	// remoteMu is taken after mu, never before.
	remoteMu      sync.Mutex
	remoteActions map[string]*RemoteAction
	remoteEvents  map[string]*RemoteEvent
	unwatch       func()
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithLogger sets the logger; records carry the node name.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toolkit) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithValidation toggles argument validation against binding schemas.
// It is on by default.
func WithValidation(enabled bool) Option {
	return func(t *Toolkit) { t.validate = enabled }
}

// WithObserver is attached to every handle the toolkit creates.
func WithObserver(fn handle.Observer) Option {
	return func(t *Toolkit) { t.observer = fn }
}

// New creates a toolkit for node writing to reg.
func New(reg *registry.Registry, node string, opts ...Option) *Toolkit {
	t := &Toolkit{
		node:     node,
		registry: reg,
		logger:   slog.Default(),
		validate: true,
		owned:    map[handle.Handle]struct{}{},

		remoteActions: map[string]*RemoteAction{},
		remoteEvents:  map[string]*RemoteEvent{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("node", node)
	return t
}

// Node returns the owning node name.
func (t *Toolkit) Node() string { return t.node }

// CreateAction creates, registers and records an action bound to fn.
func (t *Toolkit) CreateAction(displayName string, fn handle.Func, b binding.Binding, opts ...handle.Option) (*handle.Action, error) {
	options, err := t.handleOptions(b, opts)
	if err != nil {
		return nil, fmt.Errorf("create action %q: %w", displayName, err)
	}
	action := handle.NewAction(t.node, name.New(displayName), fn, b, options...)
	if err := t.adopt(action); err != nil {
		return nil, fmt.Errorf("create action %q: %w", displayName, err)
	}
	t.logger.Debug("action created", "action", displayName)
	return action, nil
}

// CreateEvent creates, registers and records an event.
func (t *Toolkit) CreateEvent(displayName string, b binding.Binding, opts ...handle.Option) (*handle.Event, error) {
	options, err := t.handleOptions(b, opts)
	if err != nil {
		return nil, fmt.Errorf("create event %q: %w", displayName, err)
	}
	event := handle.NewEvent(t.node, name.New(displayName), b, options...)
	if err := t.adopt(event); err != nil {
		return nil, fmt.Errorf("create event %q: %w", displayName, err)
	}
	t.logger.Debug("event created", "event", displayName)
	return event, nil
}

// CreateTypedAction creates an action whose argument is decoded into T
// before fn runs. A binding without a schema gets one reflected from T.
func CreateTypedAction[T any](t *Toolkit, displayName string, fn func(ctx context.Context, arg T) (interface{}, error), b binding.Binding, opts ...handle.Option) (*handle.Action, error) {
	if len(b.Schema) == 0 {
		schema, err := binding.SchemaOf(new(T))
		if err != nil {
			return nil, fmt.Errorf("create action %q: %w", displayName, err)
		}
		b.Schema = schema
	}
	target := func(ctx context.Context, arg interface{}) (interface{}, error) {
		var typed T
		if arg != nil {
			if err := conv.Convert(arg, &typed); err != nil {
				return nil, &handle.ArgumentError{Endpoint: name.NewEndpoint(t.node, name.Reduce(displayName)), Err: err}
			}
		}
		return fn(ctx, typed)
	}
	return t.CreateAction(displayName, target, b, opts...)
}

func (t *Toolkit) handleOptions(b binding.Binding, opts []handle.Option) ([]handle.Option, error) {
	ret := []handle.Option{handle.WithRelease(t.release)}
	if t.validate {
		validator, err := binding.Compile(b.Schema)
		if err != nil {
			return nil, err
		}
		if validator != nil {
			ret = append(ret, handle.WithValidator(validator))
		}
	}
	if t.observer != nil {
		ret = append(ret, handle.WithObserver(t.observer))
	}
	return append(ret, opts...), nil
}

// adopt registers h while holding the toolkit lock so DisposeAll cannot
// miss a handle created concurrently.
func (t *Toolkit) adopt(h handle.Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := t.registry.Register(h); err != nil {
		return err
	}
	t.owned[h] = struct{}{}
	return nil
}

// release is the close hook of every owned handle.
func (t *Toolkit) release(h handle.Handle) {
	t.registry.Release(h)
	t.mu.Lock()
	delete(t.owned, h)
	t.mu.Unlock()
}

// ReleaseAction closes the named action if this toolkit owns it.
func (t *Toolkit) ReleaseAction(displayName string) {
	if action := t.LocalAction(displayName); action != nil {
		_ = action.Close()
	}
}

// ReleaseEvent closes the named event if this toolkit owns it.
func (t *Toolkit) ReleaseEvent(displayName string) {
	if event := t.LocalEvent(displayName); event != nil {
		_ = event.Close()
	}
}

// LocalAction returns an owned action by display or reduced name.
func (t *Toolkit) LocalAction(displayName string) *handle.Action {
	action, _ := t.local(handle.KindAction, displayName).(*handle.Action)
	return action
}

// LocalEvent returns an owned event by display or reduced name.
func (t *Toolkit) LocalEvent(displayName string) *handle.Event {
	event, _ := t.local(handle.KindEvent, displayName).(*handle.Event)
	return event
}

func (t *Toolkit) local(kind handle.Kind, displayName string) handle.Handle {
	reduced := name.Reduce(displayName)
	t.mu.Lock()
	defer t.mu.Unlock()
	for h := range t.owned {
		if h.Kind() == kind && h.Name().Reduced == reduced {
			return h
		}
	}
	return nil
}

// Actions returns the owned actions in registry order.
func (t *Toolkit) Actions() []*handle.Action {
	var ret []*handle.Action
	for _, action := range t.registry.Actions(t.node) {
		if t.owns(action) {
			ret = append(ret, action)
		}
	}
	return ret
}

// Events returns the owned events in registry order.
func (t *Toolkit) Events() []*handle.Event {
	var ret []*handle.Event
	for _, event := range t.registry.Events(t.node) {
		if t.owns(event) {
			ret = append(ret, event)
		}
	}
	return ret
}

func (t *Toolkit) owns(h handle.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.owned[h]
	return ok
}

// CreateRemoteAction creates an action bound by name to target, usually a
// member of another node. The target does not need to exist yet.
func (t *Toolkit) CreateRemoteAction(displayName string, b binding.Binding, target Target) (*RemoteAction, error) {
	n := name.New(displayName)
	ret := &RemoteAction{remote: remote{name: n, binding: b, registry: t.registry, target: target}}
	ret.release = func() { forgetRemote(t, t.remoteActions, n.Reduced, ret) }
	if err := adoptRemote(t, t.remoteActions, n.Reduced, ret); err != nil {
		return nil, fmt.Errorf("create remote action %q: %w", displayName, err)
	}
	t.logger.Debug("remote action created", "action", displayName, "target", target.String())
	return ret, nil
}

// CreateRemoteEvent creates a subscription of handler to the event named by
// target. It wires up immediately when the target is registered and
// otherwise as soon as it is.
func (t *Toolkit) CreateRemoteEvent(displayName string, b binding.Binding, target Target, handler handle.Subscriber) (*RemoteEvent, error) {
	n := name.New(displayName)
	ret := &RemoteEvent{
		remote:  remote{name: n, binding: b, registry: t.registry, target: target},
		handler: handler,
		clock:   time.Now,
	}
	ret.release = func() { forgetRemote(t, t.remoteEvents, n.Reduced, ret) }
	if err := adoptRemote(t, t.remoteEvents, n.Reduced, ret); err != nil {
		return nil, fmt.Errorf("create remote event %q: %w", displayName, err)
	}
	ret.bind()
	t.logger.Debug("remote event created", "event", displayName, "target", target.String(), "state", ret.State().String())
	return ret, nil
}

func adoptRemote[R any](t *Toolkit, set map[string]R, key string, r R) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	t.remoteMu.Lock()
	defer t.remoteMu.Unlock()
	if _, ok := set[key]; ok {
		return fmt.Errorf("remote %q: %w", key, registry.ErrDuplicateName)
	}
	set[key] = r
	if t.unwatch == nil {
		t.unwatch = t.registry.Watch(t.rewire)
	}
	return nil
}

func forgetRemote[R comparable](t *Toolkit, set map[string]R, key string, r R) {
	t.remoteMu.Lock()
	defer t.remoteMu.Unlock()
	if set[key] == r {
		delete(set, key)
	}
}

// rewire binds the remote events waiting for a newly registered event.
func (t *Toolkit) rewire(h handle.Handle) {
	if h.Kind() != handle.KindEvent {
		return
	}
	t.remoteMu.Lock()
	events := make([]*RemoteEvent, 0, len(t.remoteEvents))
	for _, event := range t.remoteEvents {
		events = append(events, event)
	}
	t.remoteMu.Unlock()
	for _, event := range events {
		if event.matches(h) {
			event.bind()
		}
	}
}

// RemoteAction returns a remote action by display or reduced name.
func (t *Toolkit) RemoteAction(displayName string) *RemoteAction {
	t.remoteMu.Lock()
	defer t.remoteMu.Unlock()
	return t.remoteActions[name.Reduce(displayName)]
}

// RemoteEvent returns a remote event by display or reduced name.
func (t *Toolkit) RemoteEvent(displayName string) *RemoteEvent {
	t.remoteMu.Lock()
	defer t.remoteMu.Unlock()
	return t.remoteEvents[name.Reduce(displayName)]
}

// RemoteActions returns the remote actions ordered by reduced name.
func (t *Toolkit) RemoteActions() []*RemoteAction {
	t.remoteMu.Lock()
	defer t.remoteMu.Unlock()
	return sortedRemotes(t.remoteActions)
}

// RemoteEvents returns the remote events ordered by reduced name.
func (t *Toolkit) RemoteEvents() []*RemoteEvent {
	t.remoteMu.Lock()
	defer t.remoteMu.Unlock()
	return sortedRemotes(t.remoteEvents)
}

func sortedRemotes[R any](set map[string]R) []R {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	ret := make([]R, 0, len(keys))
	for _, key := range keys {
		ret = append(ret, set[key])
	}
	return ret
}

// Closed reports whether DisposeAll has run.
func (t *Toolkit) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// DisposeAll closes every owned handle and refuses further creates. It is
// safe to call repeatedly and tolerates handles closed individually.
func (t *Toolkit) DisposeAll() {
	t.mu.Lock()
	first := !t.closed
	t.closed = true
	handles := make([]handle.Handle, 0, len(t.owned))
	for h := range t.owned {
		handles = append(handles, h)
	}
	t.remoteMu.Lock()
	remotes := make([]interface{ Close() error }, 0, len(t.remoteActions)+len(t.remoteEvents))
	for _, action := range t.remoteActions {
		remotes = append(remotes, action)
	}
	for _, event := range t.remoteEvents {
		remotes = append(remotes, event)
	}
	unwatch := t.unwatch
	t.unwatch = nil
	t.remoteMu.Unlock()
	t.mu.Unlock()

	if first {
		t.logger.Info("closing toolkit", "handles", len(handles), "remotes", len(remotes))
	}
	if unwatch != nil {
		unwatch()
	}
	for _, r := range remotes {
		_ = r.Close()
	}
	for _, h := range handles {
		_ = h.Close()
	}
}
