package host

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/museumsvictoria/nodel-sub003/host/flow"
	"github.com/museumsvictoria/nodel-sub003/host/schema"
	"github.com/museumsvictoria/nodel-sub003/internal/conv"
	"github.com/museumsvictoria/nodel-sub003/internal/matcher"
	"github.com/viant/fluxor/runtime/execution"
	"github.com/viant/jsonrpc"
	mcpschema "github.com/viant/mcp-protocol/schema"
	serverproto "github.com/viant/mcp-protocol/server"
)

// DefaultToolTimeout bounds workflow executions started by ExecuteTool.
const DefaultToolTimeout = 15 * time.Minute

// Tools returns one MCP tool per registered action, named like
// "ProjectorRoom-PowerOn".
func (s *Service) Tools() serverproto.Tools {
	var result = make(serverproto.Tools, 0)
	for _, method := range s.flow.Methods() {
		aTool, err := s.LookupTool(method.Name)
		if err != nil {
			continue
		}
		result = append(result, aTool)
	}
	return result
}

// MatchTools returns the tools whose name matches pattern; see matcher.Match.
func (s *Service) MatchTools(pattern string) serverproto.Tools {
	var result = make(serverproto.Tools, 0)
	for _, aTool := range s.Tools() {
		if matcher.Match(pattern, aTool.Metadata.Name) {
			result = append(result, aTool)
		}
	}
	return result
}

// LookupTool builds the tool entry of one action. Calls made through the
// entry go straight to the action; failures are reported as tool errors.
func (s *Service) LookupTool(name string) (*serverproto.ToolEntry, error) {
	action, err := s.flow.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("unknown tool: %v: %w", name, err)
	}
	sig, err := flow.Signature(action)
	if err != nil {
		return nil, err
	}
	description := sig.Description
	toolEntry := &serverproto.ToolEntry{
		Metadata: mcpschema.Tool{
			Name:        sig.Name,
			Description: &description,
			InputSchema: schema.ToolInput(action.Binding()),
		},
	}
	toolEntry.Handler = func(ctx context.Context, request *mcpschema.CallToolRequest) (*mcpschema.CallToolResult, *jsonrpc.Error) {
		exec, err := s.flow.Method(request.Params.Name)
		if err != nil {
			return toolError(err), nil
		}
		output := &flow.Output{}
		if err := exec(ctx, map[string]interface{}(request.Params.Arguments), output); err != nil {
			return toolError(err), nil
		}
		data, err := json.Marshal(output.Result)
		if err != nil {
			return nil, jsonrpc.NewError(jsonrpc.InternalError, err.Error(), nil)
		}
		return &mcpschema.CallToolResult{Content: []mcpschema.CallToolResultContentElem{{
			Type: "text",
			Text: string(data),
		}}}, nil
	}
	return toolEntry, nil
}

func toolError(err error) *mcpschema.CallToolResult {
	return &mcpschema.CallToolResult{
		IsError: conv.Pointer(true),
		Content: []mcpschema.CallToolResultContentElem{{
			Type: "text",
			Text: err.Error(),
		}},
	}
}

// ExecuteTool runs an action as an ad-hoc fluxor execution and waits up to
// timeout for its output.
func (s *Service) ExecuteTool(ctx context.Context, name string, args map[string]interface{}, timeout time.Duration) (interface{}, error) {
	if _, err := s.flow.Lookup(name); err != nil {
		return nil, err
	}
	if err := s.startWorkflow(ctx); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	exec, err := execution.NewAtHocExecution(flow.ServiceName, name, args)
	if err != nil {
		return nil, err
	}
	waitFn, err := s.Workflow.Runtime.ScheduleExecution(ctx, exec)
	if err != nil {
		return nil, err
	}
	anExec, err := waitFn(timeout)
	if err != nil {
		return nil, err
	}
	if anExec.Error != "" {
		return nil, fmt.Errorf("execute %v: %s", name, anExec.Error)
	}
	return anExec.Output, nil
}
