package cmd

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/museumsvictoria/nodel-sub003/host/flow"
)

// ActionCmd shows detailed information about one action, including the
// fluxor method it is exposed as.
type ActionCmd struct {
	Node   string `short:"n" long:"node" description:"node name" required:"yes"`
	Action string `short:"a" long:"action" description:"action name" required:"yes"`
	JSON   bool   `long:"json" description:"print result as JSON"`
}

func (c *ActionCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	tk, err := svc.Node(c.Node)
	if err != nil {
		return err
	}
	action, err := svc.Registry().LookupAction(tk.Node(), c.Action)
	if err != nil {
		return err
	}
	sig, err := flow.Signature(action)
	if err != nil {
		return err
	}

	info := struct {
		Node        string                 `json:"node"`
		Name        string                 `json:"name"`
		Endpoint    string                 `json:"endpoint"`
		Description string                 `json:"description"`
		Group       string                 `json:"group,omitempty"`
		Caution     string                 `json:"caution,omitempty"`
		Method      string                 `json:"method"`
		InputType   string                 `json:"inputType"`
		InputDef    string                 `json:"inputDefinition,omitempty"`
		Schema      map[string]interface{} `json:"schema"`
	}{
		Node:        action.Node(),
		Name:        action.Name().Original,
		Endpoint:    action.Endpoint().String(),
		Description: sig.Description,
		Group:       action.Binding().Group,
		Caution:     action.Binding().Caution,
		Method:      flow.ServiceName + "/" + sig.Name,
		InputType:   typeString(sig.Input),
		InputDef:    typeDefinition(sig.Input, ""),
		Schema:      action.Binding().FullSchema(),
	}

	if c.JSON {
		return printJSON(info)
	}
	fmt.Printf("Node     : %s\n", info.Node)
	fmt.Printf("Name     : %s\n", info.Name)
	fmt.Printf("Endpoint : %s\n", info.Endpoint)
	fmt.Printf("Desc     : %s\n", info.Description)
	if info.Group != "" {
		fmt.Printf("Group    : %s\n", info.Group)
	}
	if info.Caution != "" {
		fmt.Printf("Caution  : %s\n", info.Caution)
	}
	fmt.Printf("Method   : %s\n", info.Method)
	fmt.Printf("Input    : %s\n", info.InputType)
	if info.InputDef != "" {
		fmt.Printf("\nInput Definition:\n%s\n", info.InputDef)
	}
	js, _ := json.MarshalIndent(info.Schema, "", "  ")
	fmt.Printf("\nSchema:\n%s\n", string(js))
	return nil
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	if t.Kind() == reflect.Pointer {
		return "*" + t.Elem().String()
	}
	return t.String()
}

// typeDefinition returns a Go-like struct definition for anonymous types or
// an empty string for named and builtin ones.
func typeDefinition(t reflect.Type, indent string) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		return typeDefinition(t.Elem(), indent)
	}
	if t.Name() != "" || t.Kind() != reflect.Struct {
		return ""
	}
	var b strings.Builder
	b.WriteString("struct {\n")
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		b.WriteString(indent)
		b.WriteString("    ")
		b.WriteString(f.Name)
		b.WriteString(" ")
		if nested := typeDefinition(f.Type, indent+"    "); nested != "" {
			b.WriteString(nested)
		} else {
			b.WriteString(simpleTypeExpr(f.Type))
		}
		if tag := strings.TrimSpace(string(f.Tag)); tag != "" {
			b.WriteString(" `")
			b.WriteString(tag)
			b.WriteString("`")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent)
	b.WriteString("}")
	return b.String()
}

func simpleTypeExpr(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + simpleTypeExpr(t.Elem())
	}
	if t.Name() != "" {
		return t.String()
	}
	switch t.Kind() {
	case reflect.Slice:
		return "[]" + simpleTypeExpr(t.Elem())
	case reflect.Map:
		return fmt.Sprintf("map[%s]%s", simpleTypeExpr(t.Key()), simpleTypeExpr(t.Elem()))
	case reflect.Interface:
		return "interface{}"
	default:
		return t.String()
	}
}
