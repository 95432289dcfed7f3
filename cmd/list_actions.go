package cmd

import (
	"fmt"

	"github.com/museumsvictoria/nodel-sub003/internal/matcher"
)

// ListActionsCmd prints every node with its actions and events.
type ListActionsCmd struct {
	Node string `short:"n" long:"node" description:"node name pattern (prefix or glob)" default:"*"`
}

func (c *ListActionsCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	reg := svc.Registry()
	for _, node := range matcher.Filter(svc.NodeNames(), c.Node) {
		fmt.Println(node)
		for _, action := range reg.Actions(node) {
			fmt.Printf("  action  %s\t%s\n", action.Name().Original, action.Binding().Description())
		}
		for _, event := range reg.Events(node) {
			fmt.Printf("  event   %s\t%s\n", event.Name().Original, event.Binding().Description())
		}
	}
	return nil
}
