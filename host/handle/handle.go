package handle

import (
	"context"
	"sync"
	"time"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/museumsvictoria/nodel-sub003/host/handle")

// Handle is the behaviour shared by *Action and *Event.
type Handle interface {
	Node() string
	Name() name.Name
	Kind() Kind
	Binding() binding.Binding
	Endpoint() name.Endpoint
	State() State
	Snapshot() Snapshot

	// MarkRegistered moves a created handle to Registered. The registry calls
	// it while holding its lock; false means the handle was already closed.
	MarkRegistered() bool

	Close() error
}

// Observer is notified after an action call or an event emit completes.
type Observer func(ctx context.Context, endpoint name.Endpoint, snapshot Snapshot)

// Snapshot is the last value seen by a member.
type Snapshot struct {
	Arg       interface{} `json:"arg"`
	Seq       int64       `json:"seq"`
	Timestamp time.Time   `json:"timestamp,omitempty"`
}

// Option configures a handle at construction.
type Option func(*options)

type options struct {
	reentrant bool
	validator *binding.Validator
	release   func(Handle)
	observers []Observer
	clock     func() time.Time
}

// Reentrant lets concurrent calls of an action reach its target
// simultaneously instead of one at a time.
func Reentrant() Option {
	return func(o *options) { o.reentrant = true }
}

// WithValidator checks every argument before dispatch.
func WithValidator(v *binding.Validator) Option {
	return func(o *options) { o.validator = v }
}

// WithRelease sets the hook run once when the handle closes.
func WithRelease(fn func(Handle)) Option {
	return func(o *options) { o.release = fn }
}

// WithObserver adds an observer notified after each successful call or emit.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observers = append(o.observers, fn) }
}

// WithClock overrides time.Now for snapshots.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

func newOptions(opts []Option) *options {
	ret := &options{clock: time.Now}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// core carries identity and lifecycle state.
type core struct {
	node    string
	name    name.Name
	kind    Kind
	binding binding.Binding
	opts    *options

	mu        sync.Mutex
	state     State
	last      Snapshot
	observers []Observer
}

func (c *core) init(node string, n name.Name, kind Kind, b binding.Binding, opts []Option) {
	c.node = node
	c.name = n
	c.kind = kind
	c.binding = b
	c.opts = newOptions(opts)
	c.observers = append([]Observer(nil), c.opts.observers...)
}

func (c *core) Node() string             { return c.node }
func (c *core) Name() name.Name          { return c.name }
func (c *core) Kind() Kind               { return c.kind }
func (c *core) Binding() binding.Binding { return c.binding }

func (c *core) Endpoint() name.Endpoint {
	return name.NewEndpoint(c.node, c.name.Reduced)
}

func (c *core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *core) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *core) MarkRegistered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateCreated:
		c.state = StateRegistered
		return true
	case StateRegistered:
		return true
	}
	return false
}

// Observe adds an observer; it returns a function removing it again.
func (c *core) Observe(fn Observer) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
	idx := len(c.observers) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.observers) {
			c.observers[idx] = nil
		}
	}
}

// close flips the state under the lock and reports whether this call did it.
func (c *core) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return false
	}
	c.state = StateClosed
	return true
}

// record stores arg as the latest value and returns the observers to notify.
func (c *core) record(arg interface{}) (Snapshot, []Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = Snapshot{Arg: arg, Seq: c.last.Seq + 1, Timestamp: c.opts.clock()}
	return c.last, c.observerList()
}

func (c *core) observerList() []Observer {
	ret := make([]Observer, 0, len(c.observers))
	for _, o := range c.observers {
		if o != nil {
			ret = append(ret, o)
		}
	}
	return ret
}

func (c *core) invalidState() error {
	return &InvalidStateError{Endpoint: c.Endpoint(), Kind: c.kind, State: StateClosed}
}
