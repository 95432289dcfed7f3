package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"github.com/museumsvictoria/nodel-sub003/internal/syncmap"
)

// Registry maps keys to live handles. Every operation is O(1) bookkeeping
// under one lock; handles are never invoked while it is held.
type Registry struct {
	entries *syncmap.Map[Key, handle.Handle]
	logger  *slog.Logger

	watchMu  sync.Mutex
	watchers map[int]func(handle.Handle)
	watchSeq int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: syncmap.New[Key, handle.Handle](),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds h under its key and marks it Registered. It fails with a
// *DuplicateNameError when another open handle holds the key, and with a
// *handle.InvalidStateError when h is already closed. Registering the same
// handle twice is a no-op.
func (r *Registry) Register(h handle.Handle) error {
	if h == nil {
		return fmt.Errorf("registry: handle cannot be nil")
	}
	key := KeyOf(h)
	live := func(existing handle.Handle) bool { return existing.State() != handle.StateClosed }
	existing, stored := r.entries.PutIf(key, h, live, h.MarkRegistered)
	switch {
	case stored:
		r.logger.Debug("registered", "node", key.Node, "kind", key.Kind.String(), "name", key.Name)
		r.notify(h)
		return nil
	case existing == h:
		return nil
	case existing != nil:
		return &DuplicateNameError{Key: key}
	}
	return &handle.InvalidStateError{Endpoint: key.Endpoint(), Kind: key.Kind, State: handle.StateClosed}
}

// Watch calls fn with every handle registered from now on. fn runs on the
// registering goroutine after the registry lock is released.
func (r *Registry) Watch(fn func(handle.Handle)) (cancel func()) {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	if r.watchers == nil {
		r.watchers = map[int]func(handle.Handle){}
	}
	r.watchSeq++
	id := r.watchSeq
	r.watchers[id] = fn
	return func() {
		r.watchMu.Lock()
		delete(r.watchers, id)
		r.watchMu.Unlock()
	}
}

func (r *Registry) notify(h handle.Handle) {
	r.watchMu.Lock()
	watchers := make([]func(handle.Handle), 0, len(r.watchers))
	for _, fn := range r.watchers {
		watchers = append(watchers, fn)
	}
	r.watchMu.Unlock()
	for _, fn := range watchers {
		fn(h)
	}
}

// Unregister removes whatever is bound under key. Absent keys are ignored.
func (r *Registry) Unregister(key Key) {
	r.entries.Delete(key)
}

// Release removes h only if it is still the handle bound under its key.
func (r *Registry) Release(h handle.Handle) {
	if h == nil {
		return
	}
	key := KeyOf(h)
	if r.entries.DeleteIf(key, func(existing handle.Handle) bool { return existing == h }) {
		r.logger.Debug("unregistered", "node", key.Node, "kind", key.Kind.String(), "name", key.Name)
	}
}

// Lookup returns the open handle bound under key.
func (r *Registry) Lookup(key Key) (handle.Handle, error) {
	h, ok := r.entries.Get(key)
	if !ok || h.State() == handle.StateClosed {
		return nil, &NotFoundError{Endpoint: key.Endpoint().String(), Key: key}
	}
	return h, nil
}

// LookupAction resolves an action; member is reduced first.
func (r *Registry) LookupAction(node, member string) (*handle.Action, error) {
	key := ActionKey(node, member)
	h, err := r.Lookup(key)
	if err != nil {
		return nil, err
	}
	action, ok := h.(*handle.Action)
	if !ok {
		return nil, &NotFoundError{Endpoint: key.Endpoint().String(), Key: key}
	}
	return action, nil
}

// LookupEvent resolves an event; member is reduced first.
func (r *Registry) LookupEvent(node, member string) (*handle.Event, error) {
	key := EventKey(node, member)
	h, err := r.Lookup(key)
	if err != nil {
		return nil, err
	}
	event, ok := h.(*handle.Event)
	if !ok {
		return nil, &NotFoundError{Endpoint: key.Endpoint().String(), Key: key}
	}
	return event, nil
}

// Handles lists the handles of one kind bound for node, ordered by binding
// order then reduced name.
func (r *Registry) Handles(node string, kind handle.Kind) []handle.Handle {
	ret := r.entries.Filter(func(k Key) bool { return k.Node == node && k.Kind == kind })
	sort.Slice(ret, func(i, j int) bool {
		oi, oj := ret[i].Binding().Order, ret[j].Binding().Order
		if oi != oj {
			return oi < oj
		}
		return ret[i].Name().Reduced < ret[j].Name().Reduced
	})
	return ret
}

// Actions lists the actions bound for node.
func (r *Registry) Actions(node string) []*handle.Action {
	var ret []*handle.Action
	for _, h := range r.Handles(node, handle.KindAction) {
		if action, ok := h.(*handle.Action); ok {
			ret = append(ret, action)
		}
	}
	return ret
}

// Events lists the events bound for node.
func (r *Registry) Events(node string) []*handle.Event {
	var ret []*handle.Event
	for _, h := range r.Handles(node, handle.KindEvent) {
		if event, ok := h.(*handle.Event); ok {
			ret = append(ret, event)
		}
	}
	return ret
}

// Nodes returns the sorted names of nodes with at least one binding.
func (r *Registry) Nodes() []string {
	seen := map[string]struct{}{}
	for _, k := range r.entries.Keys() {
		seen[k.Node] = struct{}{}
	}
	ret := make([]string, 0, len(seen))
	for node := range seen {
		ret = append(ret, node)
	}
	sort.Strings(ret)
	return ret
}

// IsHosted reports whether node has at least one binding.
func (r *Registry) IsHosted(node string) bool {
	for _, k := range r.entries.Keys() {
		if k.Node == node {
			return true
		}
	}
	return false
}

// ResolveNode maps segment onto a hosted node, first by exact name, then by
// reduced name so "ProjectorRoom" finds "Projector Room".
func (r *Registry) ResolveNode(segment string) (string, bool) {
	nodes := r.Nodes()
	for _, node := range nodes {
		if node == segment {
			return node, true
		}
	}
	reduced := name.Reduce(segment)
	for _, node := range nodes {
		if name.Reduce(node) == reduced {
			return node, true
		}
	}
	return "", false
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	return r.entries.Len()
}
