package cmd

// Options is the root for the CLI. Struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config string `short:"f" long:"config" description:"node host configuration YAML/JSON path or URL"`

	Serve       *ServeCmd       `command:"serve"        description:"Start the REST (and optionally MCP) front end"`
	ListNodes   *ListNodesCmd   `command:"list-nodes"   description:"List hosted nodes"`
	ListActions *ListActionsCmd `command:"list-actions" description:"List actions and events per node"`
	Action      *ActionCmd      `command:"action"       description:"Show detailed info about one action"`
	Call        *CallCmd        `command:"call"         description:"Call an action"`
	Emit        *EmitCmd        `command:"emit"         description:"Emit an event"`
	ListTools   *ListToolsCmd   `command:"list-tools"   description:"List the MCP tools"`
	Tool        *ToolCmd        `command:"tool"         description:"Show detailed info about one MCP tool"`
	Run         *RunCmd         `command:"run"          description:"Run a workflow with the node actions available"`
}

// Init instantiates the sub-command referenced by the first positional argument
// so that go-flags can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "serve":
		o.Serve = &ServeCmd{}
	case "list-nodes":
		o.ListNodes = &ListNodesCmd{}
	case "list-actions":
		o.ListActions = &ListActionsCmd{}
	case "action":
		o.Action = &ActionCmd{}
	case "call":
		o.Call = &CallCmd{}
	case "emit":
		o.Emit = &EmitCmd{}
	case "list-tools":
		o.ListTools = &ListToolsCmd{}
	case "tool":
		o.Tool = &ToolCmd{}
	case "run":
		o.Run = &RunCmd{}
	}
}
