package host

import (
	"context"
	"fmt"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/config"
	"github.com/museumsvictoria/nodel-sub003/host/toolkit"
	"github.com/museumsvictoria/nodel-sub003/internal/ctxlog"
)

// RewireAction is the action added to nodes declaring remote members.
const RewireAction = "Rewire"

// Rewire retargets one remote member of a node.
type Rewire struct {
	Remote string `json:"remote" jsonschema:"description=Remote action or event name"`
	Kind   string `json:"kind" jsonschema:"enum=action,enum=event"`
	Node   string `json:"node" jsonschema:"description=Target node"`
	Member string `json:"member,omitempty" jsonschema:"description=Target member; empty unbinds"`
}

// RemoteStatus describes a remote member and its binding.
type RemoteStatus struct {
	Name   string               `json:"name"`
	Kind   string               `json:"kind"`
	Target toolkit.Target       `json:"target"`
	State  toolkit.BindingState `json:"state"`
}

// addDeclaredRemotes creates the remote members of a declared node and the
// action retargeting them.
func (s *Service) addDeclaredRemotes(tk *toolkit.Toolkit, def *config.Remote) error {
	if def == nil || (len(def.Actions) == 0 && len(def.Events) == 0) {
		return nil
	}
	for _, a := range def.Actions {
		target := toolkit.Target{Node: a.Node, Member: a.Action}
		if _, err := tk.CreateRemoteAction(a.Name, a.Binding, target); err != nil {
			return err
		}
	}
	for _, e := range def.Events {
		target := toolkit.Target{Node: e.Node, Member: e.Event}
		if _, err := tk.CreateRemoteEvent(e.Name, e.Binding, target, remoteHandler(tk, e)); err != nil {
			return err
		}
	}
	_, err := toolkit.CreateTypedAction(tk, RewireAction, func(ctx context.Context, arg Rewire) (interface{}, error) {
		return rewire(tk, arg)
	}, binding.Binding{Title: "Rewire", Desc: "Binds a remote action or event to another node member.", Group: "Remote"})
	return err
}

// remoteHandler re-emits received values on the local event named by Emits.
func remoteHandler(tk *toolkit.Toolkit, def *config.RemoteEvent) func(ctx context.Context, arg interface{}) {
	return func(ctx context.Context, arg interface{}) {
		logger := ctxlog.FromContext(ctx)
		if def.Emits == "" {
			logger.Debug("remote event", "node", tk.Node(), "event", def.Name)
			return
		}
		event := tk.LocalEvent(def.Emits)
		if event == nil {
			return
		}
		if err := event.Emit(ctx, arg); err != nil {
			logger.Warn("remote event not re-emitted", "node", tk.Node(), "event", def.Name, "error", err)
		}
	}
}

func rewire(tk *toolkit.Toolkit, arg Rewire) (*RemoteStatus, error) {
	target := toolkit.Target{Node: arg.Node, Member: arg.Member}
	switch arg.Kind {
	case "action":
		remote := tk.RemoteAction(arg.Remote)
		if remote == nil {
			return nil, fmt.Errorf("remote action %q: %w", arg.Remote, ErrRemoteNotFound)
		}
		remote.Retarget(target)
		return &RemoteStatus{Name: remote.Name().Original, Kind: arg.Kind, Target: remote.Target(), State: remote.State()}, nil
	case "event":
		remote := tk.RemoteEvent(arg.Remote)
		if remote == nil {
			return nil, fmt.Errorf("remote event %q: %w", arg.Remote, ErrRemoteNotFound)
		}
		remote.Retarget(target)
		return &RemoteStatus{Name: remote.Name().Original, Kind: arg.Kind, Target: remote.Target(), State: remote.State()}, nil
	}
	return nil, fmt.Errorf("unsupported remote kind %q", arg.Kind)
}

// Remotes lists the remote members of a node with their binding state.
func (s *Service) Remotes(nodeName string) ([]*RemoteStatus, error) {
	tk, err := s.Node(nodeName)
	if err != nil {
		return nil, err
	}
	var ret []*RemoteStatus
	for _, remote := range tk.RemoteActions() {
		ret = append(ret, &RemoteStatus{Name: remote.Name().Original, Kind: "action", Target: remote.Target(), State: remote.State()})
	}
	for _, remote := range tk.RemoteEvents() {
		ret = append(ret, &RemoteStatus{Name: remote.Name().Original, Kind: "event", Target: remote.Target(), State: remote.State()})
	}
	return ret, nil
}
