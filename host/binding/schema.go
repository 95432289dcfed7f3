package binding

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/museumsvictoria/nodel-sub003/internal/conv"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaOf reflects the JSON schema of v, e.g. a struct describing an action
// argument. The "$schema" and "$id" keywords are dropped.
func SchemaOf(v interface{}) (map[string]interface{}, error) {
	reflector := new(jsonschema.Reflector)
	reflector.ExpandedStruct = true
	reflector.DoNotReference = true
	data, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out, nil
}

// Validator checks arguments against a compiled schema. A nil Validator
// accepts everything.
type Validator struct {
	schema *santhosh.Schema
}

// Compile prepares a validator for schema. An empty schema yields nil.
func Compile(schema map[string]interface{}) (*Validator, error) {
	if len(schema) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	compiled, err := santhosh.CompileString("binding.json", string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks arg, converting it to its JSON form first.
func (v *Validator) Validate(arg interface{}) error {
	if v == nil || v.schema == nil {
		return nil
	}
	normalized, err := conv.Normalize(arg)
	if err != nil {
		return fmt.Errorf("failed to normalize argument: %w", err)
	}
	return v.schema.Validate(normalized)
}
