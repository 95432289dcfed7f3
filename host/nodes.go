package host

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/museumsvictoria/nodel-sub003/host/config"
	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/host/toolkit"
	"github.com/museumsvictoria/nodel-sub003/internal/ctxlog"
)

// AddNode creates the toolkit of a new node. Node names are compared in
// reduced form, so "Projector Room" and "ProjectorRoom" are the same node.
func (s *Service) AddNode(nodeName string) (*toolkit.Toolkit, error) {
	n := name.New(nodeName)
	if n.IsEmpty() {
		return nil, fmt.Errorf("add node %q: %w", nodeName, ErrEmptyNodeName)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if atomic.LoadInt32(&s.state) == stateStopped {
		return nil, fmt.Errorf("add node %q: %w", nodeName, toolkit.ErrClosed)
	}
	if _, ok := s.nodes[n.Reduced]; ok {
		return nil, fmt.Errorf("add node %q: %w", nodeName, ErrNodeExists)
	}
	tk := toolkit.New(s.registry, nodeName,
		toolkit.WithLogger(s.logger),
		toolkit.WithValidation(!s.config.DisableValidation),
		toolkit.WithObserver(s.observe),
	)
	s.nodes[n.Reduced] = tk
	s.logger.Info("node added", "node", nodeName)
	return tk, nil
}

// Node returns the toolkit of a hosted node.
func (s *Service) Node(nodeName string) (*toolkit.Toolkit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tk, ok := s.nodes[name.Reduce(nodeName)]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", nodeName, ErrNodeNotFound)
	}
	return tk, nil
}

// RemoveNode disposes every member of a node and forgets it.
func (s *Service) RemoveNode(nodeName string) error {
	key := name.Reduce(nodeName)
	s.mu.Lock()
	tk, ok := s.nodes[key]
	delete(s.nodes, key)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("remove node %q: %w", nodeName, ErrNodeNotFound)
	}
	tk.DisposeAll()
	s.logger.Info("node removed", "node", tk.Node())
	return nil
}

// NodeNames returns the sorted display names of the hosted nodes.
func (s *Service) NodeNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]string, 0, len(s.nodes))
	for _, tk := range s.nodes {
		ret = append(ret, tk.Node())
	}
	sort.Strings(ret)
	return ret
}

func (s *Service) resolveNode(segment string) (string, bool) {
	tk, err := s.Node(segment)
	if err != nil {
		return "", false
	}
	return tk.Node(), true
}

func (s *Service) disposeNodes() {
	s.mu.Lock()
	toolkits := make([]*toolkit.Toolkit, 0, len(s.nodes))
	for _, tk := range s.nodes {
		toolkits = append(toolkits, tk)
	}
	s.mu.Unlock()
	for _, tk := range toolkits {
		tk.DisposeAll()
	}
}

func (s *Service) observe(ctx context.Context, endpoint name.Endpoint, snapshot handle.Snapshot) {
	ctxlog.FromContext(ctx).Debug("activity", "endpoint", endpoint.String(), "seq", snapshot.Seq)
}

// Call invokes an action by node and member name.
func (s *Service) Call(ctx context.Context, nodeName, action string, arg interface{}) (interface{}, error) {
	node, ok := s.resolveNode(nodeName)
	if !ok {
		return nil, registry.NewNotFoundError(nodeName)
	}
	target, err := s.registry.LookupAction(node, action)
	if err != nil {
		return nil, err
	}
	return target.Call(ctx, arg)
}

// Emit emits arg on an event by node and member name.
func (s *Service) Emit(ctx context.Context, nodeName, event string, arg interface{}) error {
	node, ok := s.resolveNode(nodeName)
	if !ok {
		return registry.NewNotFoundError(nodeName)
	}
	target, err := s.registry.LookupEvent(node, event)
	if err != nil {
		return err
	}
	return target.Emit(ctx, arg)
}

// loadNodes creates the nodes declared in the configuration.
func (s *Service) loadNodes(ctx context.Context) error {
	defs, err := s.config.LoadNodes(ctx)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := s.addDeclaredNode(ctx, def); err != nil {
			return fmt.Errorf("node %q: %w", def.Name, err)
		}
	}
	return nil
}

func (s *Service) addDeclaredNode(ctx context.Context, def *config.Node) error {
	tk, err := s.AddNode(def.Name)
	if err != nil {
		return err
	}
	for _, e := range def.Events {
		event, err := tk.CreateEvent(e.Name, e.Binding)
		if err != nil {
			return err
		}
		if e.Initial != nil {
			if err := event.Emit(ctx, e.Initial); err != nil {
				return fmt.Errorf("initial %q: %w", e.Name, err)
			}
		}
	}
	if err := s.addDeclaredRemotes(tk, def.Remote); err != nil {
		return err
	}
	for _, a := range def.Actions {
		var opts []handle.Option
		if a.Reentrant {
			opts = append(opts, handle.Reentrant())
		}
		if _, err := tk.CreateAction(a.Name, declaredAction(tk, a), a.Binding, opts...); err != nil {
			return err
		}
	}
	return nil
}

// declaredAction returns the target of a config action: it emits on its
// event when Emits is set, forwards to a remote action when Forward is set
// and echoes its argument otherwise.
func declaredAction(tk *toolkit.Toolkit, def *config.Action) handle.Func {
	if def.Forward != "" {
		return func(ctx context.Context, arg interface{}) (interface{}, error) {
			remote := tk.RemoteAction(def.Forward)
			if remote == nil {
				return nil, registry.NewNotFoundError(def.Forward)
			}
			return remote.Call(ctx, arg)
		}
	}
	if def.Emits == "" {
		return func(_ context.Context, arg interface{}) (interface{}, error) {
			return arg, nil
		}
	}
	return func(ctx context.Context, arg interface{}) (interface{}, error) {
		event := tk.LocalEvent(def.Emits)
		if event == nil {
			return nil, registry.NewNotFoundError(name.NewEndpoint(tk.Node(), def.Emits).String())
		}
		value := arg
		if def.Value != nil {
			value = def.Value
		}
		if err := event.Emit(ctx, value); err != nil {
			return nil, err
		}
		return value, nil
	}
}
