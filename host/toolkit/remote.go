package toolkit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
)

// ErrUnbound is returned when a remote action without a target is called.
var ErrUnbound = errors.New("remote member is not bound")

// BindingState reports how far a remote member got resolving its target.
type BindingState int

const (
	// BindingEmpty means no target node or member is set.
	BindingEmpty BindingState = iota
	// BindingUnresolved means the target node is not hosted.
	BindingUnresolved
	// BindingMissing means the node is hosted but the member is not.
	BindingMissing
	// BindingWired means calls or emits reach the target.
	BindingWired
)

func (s BindingState) String() string {
	switch s {
	case BindingEmpty:
		return "Empty"
	case BindingUnresolved:
		return "ResolutionFailure"
	case BindingMissing:
		return "Missing"
	case BindingWired:
		return "Wired"
	}
	return fmt.Sprintf("BindingState(%d)", int(s))
}

func (s BindingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Target names the member of another node a remote member is bound to.
type Target struct {
	Node   string `yaml:"node,omitempty" json:"node,omitempty"`
	Member string `yaml:"member,omitempty" json:"member,omitempty"`
}

// IsEmpty reports whether either part is missing.
func (t Target) IsEmpty() bool {
	return name.Reduce(t.Node) == "" || name.Reduce(t.Member) == ""
}

func (t Target) String() string {
	return name.NewEndpoint(t.Node, name.Reduce(t.Member)).String()
}

// remote carries what remote actions and events share.
type remote struct {
	name     name.Name
	binding  binding.Binding
	registry *registry.Registry
	release  func()

	mu     sync.Mutex
	target Target
	closed bool
}

func (r *remote) Name() name.Name          { return r.name }
func (r *remote) Binding() binding.Binding { return r.binding }

// Target returns the member the remote is currently bound to.
func (r *remote) Target() Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// Closed reports whether the remote was released.
func (r *remote) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// resolveNode maps the target node onto a hosted node.
func (r *remote) resolveNode(target Target) (string, BindingState, error) {
	if target.IsEmpty() {
		return "", BindingEmpty, ErrUnbound
	}
	node, ok := r.registry.ResolveNode(target.Node)
	if !ok {
		return "", BindingUnresolved, registry.NewNotFoundError(target.Node)
	}
	return node, BindingMissing, nil
}

// close flips the closed flag and reports whether this call did it.
func (r *remote) close() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.closed = true
	return true
}

// RemoteAction forwards calls to an action of another node, looked up by
// name on every call.
type RemoteAction struct {
	remote
}

// State resolves the target without calling it.
func (a *RemoteAction) State() BindingState {
	_, state, _ := a.resolve()
	return state
}

func (a *RemoteAction) resolve() (*handle.Action, BindingState, error) {
	node, state, err := a.resolveNode(a.Target())
	if err != nil {
		return nil, state, err
	}
	target, err := a.registry.LookupAction(node, a.Target().Member)
	if err != nil {
		return nil, BindingMissing, err
	}
	return target, BindingWired, nil
}

// Call forwards arg to the target action.
func (a *RemoteAction) Call(ctx context.Context, arg interface{}) (interface{}, error) {
	if a.Closed() {
		return nil, fmt.Errorf("remote action %q: %w", a.name.Original, ErrClosed)
	}
	target, _, err := a.resolve()
	if err != nil {
		return nil, fmt.Errorf("remote action %q: %w", a.name.Original, err)
	}
	return target.Call(ctx, arg)
}

// Retarget binds the remote action to another member.
func (a *RemoteAction) Retarget(target Target) {
	a.mu.Lock()
	a.target = target
	a.mu.Unlock()
}

// Close releases the remote action from its toolkit; later calls fail.
func (a *RemoteAction) Close() error {
	if a.close() && a.release != nil {
		a.release()
	}
	return nil
}

// RemoteEvent subscribes a handler to an event of another node. It wires up
// as soon as the target is registered and again whenever the target is
// replaced.
type RemoteEvent struct {
	remote
	handler handle.Subscriber
	clock   func() time.Time

	source      *handle.Event
	unsubscribe func()
	last        handle.Snapshot
}

// State reports whether the subscription reaches a live target, wiring it
// first when the target has appeared.
func (e *RemoteEvent) State() BindingState {
	e.bind()
	e.mu.Lock()
	target := e.target
	wired := e.source != nil && e.source.State() != handle.StateClosed
	e.mu.Unlock()
	if wired {
		return BindingWired
	}
	_, state, err := e.resolveNode(target)
	if err != nil {
		return state
	}
	return BindingMissing
}

// Snapshot returns the last value received from the target.
func (e *RemoteEvent) Snapshot() handle.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Retarget drops the current subscription and binds to another member.
func (e *RemoteEvent) Retarget(target Target) {
	e.mu.Lock()
	e.target = target
	e.detach()
	e.mu.Unlock()
	e.bind()
}

// bind subscribes to the target when it is registered and not yet wired.
func (e *RemoteEvent) bind() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.source != nil && e.source.State() != handle.StateClosed {
		return
	}
	e.detach()
	node, _, err := e.resolveNode(e.target)
	if err != nil {
		return
	}
	source, err := e.registry.LookupEvent(node, e.target.Member)
	if err != nil {
		return
	}
	e.source = source
	e.unsubscribe = source.Subscribe(e.receive)
}

// matches reports whether h is the event this remote is waiting for.
func (e *RemoteEvent) matches(h handle.Handle) bool {
	if h.Kind() != handle.KindEvent {
		return false
	}
	target := e.Target()
	return name.Reduce(h.Node()) == name.Reduce(target.Node) && h.Name().Reduced == name.Reduce(target.Member)
}

// detach must be called with mu held.
func (e *RemoteEvent) detach() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	e.source, e.unsubscribe = nil, nil
}

func (e *RemoteEvent) receive(ctx context.Context, arg interface{}) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.last = handle.Snapshot{Arg: arg, Seq: e.last.Seq + 1, Timestamp: e.clock()}
	e.mu.Unlock()
	if e.handler != nil {
		e.handler(ctx, arg)
	}
}

// Close unsubscribes and releases the remote event from its toolkit.
func (e *RemoteEvent) Close() error {
	if !e.close() {
		return nil
	}
	e.mu.Lock()
	e.detach()
	e.mu.Unlock()
	if e.release != nil {
		e.release()
	}
	return nil
}
