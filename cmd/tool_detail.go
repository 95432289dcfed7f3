package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/museumsvictoria/nodel-sub003/internal/conv"
)

// ToolCmd prints metadata and input schema for a single tool.
type ToolCmd struct {
	Name string `short:"n" long:"name" description:"tool name (node-action)" positional-arg-name:"name" required:"yes"`
	JSON bool   `long:"json" description:"print result as JSON"`
}

func (c *ToolCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	entry, err := svc.LookupTool(c.Name)
	if err != nil {
		return err
	}

	info := struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		InputSchema interface{} `json:"inputSchema"`
	}{entry.Metadata.Name, conv.Dereference(entry.Metadata.Description), entry.Metadata.InputSchema}

	if c.JSON {
		return printJSON(info)
	}
	fmt.Printf("Name : %s\n", info.Name)
	fmt.Printf("Desc : %s\n", info.Description)
	js, _ := json.MarshalIndent(info.InputSchema, "", "  ")
	fmt.Printf("InputSchema:\n%s\n", string(js))
	return nil
}
