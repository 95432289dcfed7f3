package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/museumsvictoria/nodel-sub003/host/flow"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"github.com/museumsvictoria/nodel-sub003/host/schema"
)

// CallCmd calls an action. The argument is given inline via -i/--input or
// read from a file via --file; values that are not JSON are sent as strings.
type CallCmd struct {
	Node       string `short:"n" long:"node" description:"node name" required:"yes"`
	Action     string `short:"a" long:"action" description:"action name" required:"yes"`
	Inline     string `short:"i" long:"input" description:"inline argument (JSON or plain string)"`
	File       string `long:"file" description:"path to a JSON argument file (use - for stdin)"`
	Workflow   bool   `short:"w" long:"workflow" description:"run the call as a fluxor workflow execution"`
	TimeoutSec int    `long:"timeout" description:"seconds to wait for a workflow execution" default:"120"`
}

func (c *CallCmd) Execute(_ []string) error {
	arg, err := readInput(c.Inline, c.File)
	if err != nil {
		return err
	}
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	ctx := context.Background()

	var out interface{}
	if c.Workflow {
		tk, err := svc.Node(c.Node)
		if err != nil {
			return err
		}
		method := name.NewEndpoint(name.Reduce(tk.Node()), c.Action).String()
		args := map[string]interface{}{schema.ArgField: arg}
		out, err = svc.ExecuteTool(ctx, method, args, time.Duration(c.TimeoutSec)*time.Second)
		if err != nil {
			return err
		}
		if output, ok := out.(*flow.Output); ok {
			out = output.Result
		}
	} else if out, err = svc.Call(ctx, c.Node, c.Action, arg); err != nil {
		return err
	}
	return printJSON(out)
}

// readInput returns the inline or file argument; both at once is an error.
func readInput(inline, file string) (interface{}, error) {
	if inline != "" && file != "" {
		return nil, fmt.Errorf("-i/--input and --file are mutually exclusive")
	}
	if file == "" {
		return parseArg(inline), nil
	}
	var rdr io.Reader
	if file == "-" {
		rdr = os.Stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()
		rdr = f
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return parseArg(string(data)), nil
}
