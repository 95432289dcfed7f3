package binding

// Binding describes an action or event.
type Binding struct {
	Title      string                 `yaml:"title,omitempty" json:"title,omitempty"`
	Desc       string                 `yaml:"desc,omitempty" json:"desc,omitempty"`
	Group      string                 `yaml:"group,omitempty" json:"group,omitempty"`
	Caution    string                 `yaml:"caution,omitempty" json:"caution,omitempty"`
	Order      int                    `yaml:"order,omitempty" json:"order,omitempty"`
	Schema     map[string]interface{} `yaml:"schema,omitempty" json:"schema,omitempty"`
	Attributes map[string]interface{} `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Description returns Desc, falling back to Title.
func (b Binding) Description() string {
	if b.Desc != "" {
		return b.Desc
	}
	return b.Title
}

// FullSchema wraps the argument schema into an object with a single "arg"
// property. Members without a schema take a null argument.
func (b Binding) FullSchema() map[string]interface{} {
	var arg map[string]interface{}
	if len(b.Schema) > 0 {
		arg = b.Schema
	} else {
		arg = map[string]interface{}{"type": "null"}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"arg": arg,
		},
	}
}
