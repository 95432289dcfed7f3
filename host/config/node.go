package config

import (
	"fmt"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/name"
)

// Node declares a node with static members.
type Node struct {
	Name    string    `yaml:"name" json:"name"`
	Desc    string    `yaml:"desc,omitempty" json:"desc,omitempty"`
	Actions []*Action `yaml:"actions,omitempty" json:"actions,omitempty"`
	Events  []*Event  `yaml:"events,omitempty" json:"events,omitempty"`
	Remote  *Remote   `yaml:"remote,omitempty" json:"remote,omitempty"`
}

// Remote declares the members a node binds to on other nodes.
type Remote struct {
	Actions []*RemoteAction `yaml:"actions,omitempty" json:"actions,omitempty"`
	Events  []*RemoteEvent  `yaml:"events,omitempty" json:"events,omitempty"`
}

// RemoteAction binds a name to an action of another node.
type RemoteAction struct {
	Name            string `yaml:"name" json:"name"`
	binding.Binding `yaml:",inline"`
	Node            string `yaml:"node,omitempty" json:"node,omitempty"`
	Action          string `yaml:"action,omitempty" json:"action,omitempty"`
}

// RemoteEvent subscribes to an event of another node. With Emits set each
// received value is emitted again on that local event.
type RemoteEvent struct {
	Name            string `yaml:"name" json:"name"`
	binding.Binding `yaml:",inline"`
	Node            string `yaml:"node,omitempty" json:"node,omitempty"`
	Event           string `yaml:"event,omitempty" json:"event,omitempty"`
	Emits           string `yaml:"emits,omitempty" json:"emits,omitempty"`
}

// Action declares an action. With Emits set, calling it emits Value (or the
// call argument when Value is nil) on that local event. With Forward set the
// argument goes to that remote action and its result is returned. Otherwise
// it returns its argument.
type Action struct {
	Name            string `yaml:"name" json:"name"`
	binding.Binding `yaml:",inline"`
	Emits           string      `yaml:"emits,omitempty" json:"emits,omitempty"`
	Forward         string      `yaml:"forward,omitempty" json:"forward,omitempty"`
	Value           interface{} `yaml:"value,omitempty" json:"value,omitempty"`
	Reentrant       bool        `yaml:"reentrant,omitempty" json:"reentrant,omitempty"`
}

// Event declares an event, optionally emitting Initial once created.
type Event struct {
	Name            string `yaml:"name" json:"name"`
	binding.Binding `yaml:",inline"`
	Initial         interface{} `yaml:"initial,omitempty" json:"initial,omitempty"`
}

func validateNodes(nodes []*Node) error {
	seen := map[string]bool{}
	for i, node := range nodes {
		if node == nil || node.Name == "" {
			return fmt.Errorf("node[%d]: name is required", i)
		}
		key := name.Reduce(node.Name)
		if seen[key] {
			return fmt.Errorf("node %q: defined more than once", node.Name)
		}
		seen[key] = true
		if err := node.validate(); err != nil {
			return fmt.Errorf("node %q: %w", node.Name, err)
		}
	}
	return nil
}

func (n *Node) validate() error {
	events := map[string]bool{}
	for i, event := range n.Events {
		if event == nil || event.Name == "" {
			return fmt.Errorf("event[%d]: name is required", i)
		}
		key := name.Reduce(event.Name)
		if events[key] {
			return fmt.Errorf("event %q: defined more than once", event.Name)
		}
		events[key] = true
	}
	remoteActions := map[string]bool{}
	if n.Remote != nil {
		for i, action := range n.Remote.Actions {
			if action == nil || action.Name == "" {
				return fmt.Errorf("remote action[%d]: name is required", i)
			}
			key := name.Reduce(action.Name)
			if remoteActions[key] {
				return fmt.Errorf("remote action %q: defined more than once", action.Name)
			}
			remoteActions[key] = true
		}
		remoteEvents := map[string]bool{}
		for i, event := range n.Remote.Events {
			if event == nil || event.Name == "" {
				return fmt.Errorf("remote event[%d]: name is required", i)
			}
			key := name.Reduce(event.Name)
			if remoteEvents[key] {
				return fmt.Errorf("remote event %q: defined more than once", event.Name)
			}
			remoteEvents[key] = true
			if event.Emits != "" && !events[name.Reduce(event.Emits)] {
				return fmt.Errorf("remote event %q: emits unknown event %q", event.Name, event.Emits)
			}
		}
	}
	actions := map[string]bool{}
	for i, action := range n.Actions {
		if action == nil || action.Name == "" {
			return fmt.Errorf("action[%d]: name is required", i)
		}
		key := name.Reduce(action.Name)
		if actions[key] {
			return fmt.Errorf("action %q: defined more than once", action.Name)
		}
		actions[key] = true
		if action.Emits != "" && !events[name.Reduce(action.Emits)] {
			return fmt.Errorf("action %q: emits unknown event %q", action.Name, action.Emits)
		}
		if action.Emits != "" && action.Forward != "" {
			return fmt.Errorf("action %q: emits and forward are exclusive", action.Name)
		}
		if action.Forward != "" && !remoteActions[name.Reduce(action.Forward)] {
			return fmt.Errorf("action %q: forwards to unknown remote action %q", action.Name, action.Forward)
		}
	}
	return nil
}
