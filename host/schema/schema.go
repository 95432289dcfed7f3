package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	mcpschema "github.com/viant/mcp-protocol/schema"
	"github.com/viant/x"
)

// ArgField is the property carrying the member argument.
const ArgField = "arg"

// typeRegistry holds dynamic Go types generated from binding schemas.
var typeRegistry = x.NewRegistry()

// Registry returns the registry of dynamic types.
func Registry() *x.Registry {
	return typeRegistry
}

// RegisterType registers a generated type.
func RegisterType(t reflect.Type, options ...x.Option) {
	typeRegistry.Register(x.NewType(t, options...))
}

// ToolInput returns the MCP input schema of a member: an object whose "arg"
// property follows the binding schema. Members without a schema take no
// properties.
func ToolInput(b binding.Binding) mcpschema.ToolInputSchema {
	ret := mcpschema.ToolInputSchema{Type: "object"}
	if len(b.Schema) == 0 {
		return ret
	}
	ret.Properties = map[string]map[string]interface{}{ArgField: b.Schema}
	if required, _ := b.Schema["required"].(bool); required {
		ret.Required = []string{ArgField}
	}
	return ret
}

// typeCache maps the canonical JSON of a schema to its generated type.
var typeCache sync.Map

// TypeOf builds a struct type with a single Arg field typed after the binding
// schema. Types are registered once per distinct schema.
func TypeOf(b binding.Binding) (reflect.Type, error) {
	key, err := json.Marshal(b.Schema)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if t, ok := typeCache.Load(string(key)); ok {
		return t.(reflect.Type), nil
	}
	props := map[string]map[string]interface{}{}
	if len(b.Schema) > 0 {
		props[ArgField] = b.Schema
	} else {
		props[ArgField] = map[string]interface{}{}
	}
	fields, err := buildFields(props, nil)
	if err != nil {
		return nil, err
	}
	t := reflect.StructOf(fields)
	if actual, loaded := typeCache.LoadOrStore(string(key), t); loaded {
		return actual.(reflect.Type), nil
	}
	RegisterType(t)
	return t, nil
}

func buildFields(props map[string]map[string]interface{}, required []string) ([]reflect.StructField, error) {
	keys := make([]string, 0, len(props))
	for name := range props {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	requiredSet := make(map[string]struct{}, len(required))
	for _, n := range required {
		requiredSet[n] = struct{}{}
	}
	var fields []reflect.StructField
	for _, name := range keys {
		def := props[name]
		fieldType, err := goTypeFromDef(def)
		if err != nil {
			return nil, fmt.Errorf("failed to determine type for field %q: %w", name, err)
		}
		tagName := name
		if _, ok := requiredSet[name]; !ok {
			tagName += ",omitempty"
		}
		tag := fmt.Sprintf("json:%q", tagName)
		if desc, ok := def["description"].(string); ok && desc != "" {
			tag += fmt.Sprintf(" description:%q", desc)
		}
		fields = append(fields, reflect.StructField{
			Name: exportedName(name),
			Type: fieldType,
			Tag:  reflect.StructTag(tag),
		})
	}
	return fields, nil
}

func exportedName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if upper && r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	ret := b.String()
	if ret == "" || (ret[0] >= '0' && ret[0] <= '9') {
		ret = "F" + ret
	}
	return ret
}

var anyType = reflect.TypeOf(new(interface{})).Elem()

func goTypeFromDef(def map[string]interface{}) (reflect.Type, error) {
	var typeStr string
	switch v := def["type"].(type) {
	case string:
		typeStr = v
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				typeStr = s
			}
		}
	}
	switch typeStr {
	case "string":
		if format, ok := def["format"].(string); ok && (format == "date-time" || format == "date") {
			return reflect.TypeOf(time.Time{}), nil
		}
		return reflect.TypeOf(""), nil
	case "integer":
		return reflect.TypeOf(int64(0)), nil
	case "number":
		return reflect.TypeOf(float64(0)), nil
	case "boolean":
		return reflect.TypeOf(true), nil
	case "object":
		nested := map[string]map[string]interface{}{}
		var nestedRequired []string
		if rawReq, ok := def["required"].([]interface{}); ok {
			for _, raw := range rawReq {
				if s, ok := raw.(string); ok {
					nestedRequired = append(nestedRequired, s)
				}
			}
		}
		if raw, ok := def["properties"].(map[string]interface{}); ok {
			for k, v := range raw {
				if m, ok := v.(map[string]interface{}); ok {
					nested[k] = m
				}
			}
		}
		if len(nested) == 0 {
			return reflect.TypeOf(map[string]interface{}{}), nil
		}
		fields, err := buildFields(nested, nestedRequired)
		if err != nil {
			return nil, err
		}
		nestedType := reflect.StructOf(fields)
		RegisterType(nestedType)
		return nestedType, nil
	case "array":
		if raw, ok := def["items"].(map[string]interface{}); ok {
			itemType, err := goTypeFromDef(raw)
			if err != nil {
				return nil, err
			}
			return reflect.SliceOf(itemType), nil
		}
		return reflect.SliceOf(anyType), nil
	default:
		return anyType, nil
	}
}
