package cmd

import (
	"fmt"
	"sort"
)

// ListToolsCmd prints every MCP tool, optionally filtered by a name pattern.
type ListToolsCmd struct {
	Pattern string `short:"p" long:"pattern" description:"tool name pattern (prefix or glob)" default:"*"`
}

func (c *ListToolsCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}

	tools := svc.MatchTools(c.Pattern)
	sort.Slice(tools, func(i, j int) bool { return tools[i].Metadata.Name < tools[j].Metadata.Name })
	for _, t := range tools {
		desc := ""
		if t.Metadata.Description != nil {
			desc = *t.Metadata.Description
		}
		fmt.Printf("%s\t%s\n", t.Metadata.Name, desc)
	}
	return nil
}
