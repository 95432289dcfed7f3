package registry

import (
	"fmt"

	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/name"
)

// Key addresses one directory entry. Name holds the reduced member name.
type Key struct {
	Node string
	Kind handle.Kind
	Name string
}

// ActionKey builds the key of an action; member is reduced.
func ActionKey(node, member string) Key {
	return Key{Node: node, Kind: handle.KindAction, Name: name.Reduce(member)}
}

// EventKey builds the key of an event; member is reduced.
func EventKey(node, member string) Key {
	return Key{Node: node, Kind: handle.KindEvent, Name: name.Reduce(member)}
}

// KeyOf returns the key a handle registers under.
func KeyOf(h handle.Handle) Key {
	return Key{Node: h.Node(), Kind: h.Kind(), Name: h.Name().Reduced}
}

func (k Key) Endpoint() name.Endpoint {
	return name.NewEndpoint(k.Node, k.Name)
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%s (%s)", k.Node, k.Name, k.Kind)
}
