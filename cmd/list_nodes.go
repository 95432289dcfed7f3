package cmd

import "fmt"

// ListNodesCmd prints the hosted nodes.
type ListNodesCmd struct {
	JSON bool `long:"json" description:"print result as JSON"`
}

func (c *ListNodesCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	names := svc.NodeNames()
	if c.JSON {
		return printJSON(names)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
