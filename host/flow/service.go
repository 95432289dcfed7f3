package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/name"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/host/schema"
	"github.com/museumsvictoria/nodel-sub003/internal/conv"
	"github.com/viant/fluxor/model/types"
)

// ServiceName is the fluxor service the node actions are registered under.
const ServiceName = "nodel"

// Output is the value every method produces.
type Output struct {
	Result interface{} `json:"result,omitempty"`
}

var outputType = reflect.TypeOf(Output{})

// Service implements types.Service over the registry. Methods are resolved on
// every call so nodes added after the workflow engine started are visible.
type Service struct {
	registry *registry.Registry
}

// New creates a service backed by reg.
func New(reg *registry.Registry) *Service {
	return &Service{registry: reg}
}

// MethodName returns the method (and MCP tool) name of an action, e.g.
// "ProjectorRoom-PowerOn".
func MethodName(action *handle.Action) string {
	return name.NewEndpoint(name.Reduce(action.Node()), action.Name().Reduced).String()
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) Methods() types.Signatures {
	var ret types.Signatures
	for _, node := range s.registry.Nodes() {
		for _, action := range s.registry.Actions(node) {
			sig, err := Signature(action)
			if err != nil {
				continue
			}
			ret = append(ret, *sig)
		}
	}
	return ret
}

// Signature describes action as a fluxor method. The input is a struct with a
// single Arg field typed after the binding schema.
func Signature(action *handle.Action) (*types.Signature, error) {
	input, err := schema.TypeOf(action.Binding())
	if err != nil {
		return nil, fmt.Errorf("signature %v: %w", action.Endpoint(), err)
	}
	description := action.Binding().Description()
	if description == "" {
		description = action.Name().Original
	}
	return &types.Signature{
		Name:        MethodName(action),
		Description: description,
		Input:       input,
		Output:      outputType,
	}, nil
}

// Lookup resolves a method name to a live action.
func (s *Service) Lookup(method string) (*handle.Action, error) {
	endpoint := name.Endpoint(method)
	node, ok := s.registry.ResolveNode(endpoint.Node())
	if !ok {
		return nil, registry.NewNotFoundError(method)
	}
	return s.registry.LookupAction(node, endpoint.Member())
}

func (s *Service) Method(method string) (types.Executable, error) {
	action, err := s.Lookup(method)
	if err != nil {
		return nil, types.NewMethodNotFoundError(method)
	}
	return func(ctx context.Context, input, output interface{}) error {
		arg, err := ArgOf(input)
		if err != nil {
			return err
		}
		result, err := action.Call(ctx, arg)
		if err != nil {
			return err
		}
		return setOutput(output, result)
	}, nil
}

// ArgOf extracts the member argument from a fluxor input: a map with an "arg"
// key, or a struct (or pointer to one) with an Arg field.
func ArgOf(input interface{}) (interface{}, error) {
	switch actual := input.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return actual[schema.ArgField], nil
	case *map[string]interface{}:
		if actual == nil {
			return nil, nil
		}
		return (*actual)[schema.ArgField], nil
	}
	value := reflect.ValueOf(input)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil, nil
		}
		value = value.Elem()
	}
	if value.Kind() == reflect.Struct {
		if field := value.FieldByName("Arg"); field.IsValid() {
			return field.Interface(), nil
		}
	}
	args, err := conv.ToMap(input)
	if err != nil {
		return nil, fmt.Errorf("unsupported input %T: %w", input, err)
	}
	return args[schema.ArgField], nil
}

func setOutput(output interface{}, result interface{}) error {
	switch actual := output.(type) {
	case nil:
		return nil
	case *Output:
		actual.Result = result
		return nil
	case *interface{}:
		*actual = result
		return nil
	case *string:
		if text, ok := result.(string); ok {
			*actual = text
			return nil
		}
		data, err := json.Marshal(result)
		if err != nil {
			return err
		}
		*actual = string(data)
		return nil
	}
	return conv.Convert(Output{Result: result}, output)
}
