package schema

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolInput(t *testing.T) {
	empty := ToolInput(binding.Binding{})
	assert.Equal(t, "object", empty.Type)
	assert.Empty(t, empty.Properties)

	withSchema := ToolInput(binding.Binding{Schema: map[string]interface{}{"type": "string", "required": true}})
	assert.Equal(t, "string", withSchema.Properties[ArgField]["type"])
	assert.Equal(t, []string{ArgField}, withSchema.Required)
}

func TestTypeOf(t *testing.T) {
	var testCases = []struct {
		description string
		schema      map[string]interface{}
		expected    reflect.Kind
	}{
		{description: "no schema", schema: nil, expected: reflect.Interface},
		{description: "string", schema: map[string]interface{}{"type": "string"}, expected: reflect.String},
		{description: "integer", schema: map[string]interface{}{"type": "integer"}, expected: reflect.Int64},
		{description: "number", schema: map[string]interface{}{"type": "number"}, expected: reflect.Float64},
		{description: "boolean", schema: map[string]interface{}{"type": "boolean"}, expected: reflect.Bool},
		{description: "array", schema: map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}}, expected: reflect.Slice},
		{description: "free object", schema: map[string]interface{}{"type": "object"}, expected: reflect.Map},
		{description: "object", schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"channel": map[string]interface{}{"type": "integer"},
				"level":   map[string]interface{}{"type": "number", "description": "gain in dB"},
			},
			"required": []interface{}{"channel"},
		}, expected: reflect.Struct},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			rType, err := TypeOf(binding.Binding{Schema: tc.schema})
			require.NoError(t, err)
			require.Equal(t, reflect.Struct, rType.Kind())
			field, ok := rType.FieldByName("Arg")
			require.True(t, ok)
			assert.Equal(t, tc.expected, field.Type.Kind())
			assert.Equal(t, "arg,omitempty", field.Tag.Get("json"))
		})
	}
}

func TestTypeOf_RoundTrip(t *testing.T) {
	rType, err := TypeOf(binding.Binding{Schema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"channel": map[string]interface{}{"type": "integer"},
			"level":   map[string]interface{}{"type": "number", "description": "gain in dB"},
		},
		"required": []interface{}{"channel"},
	}})
	require.NoError(t, err)

	argType := func() reflect.Type { f, _ := rType.FieldByName("Arg"); return f.Type }()
	level, ok := argType.FieldByName("Level")
	require.True(t, ok)
	assert.Equal(t, "gain in dB", level.Tag.Get("description"))
	channel, _ := argType.FieldByName("Channel")
	assert.Equal(t, "channel", channel.Tag.Get("json"))

	inst := reflect.New(rType).Interface()
	require.NoError(t, json.Unmarshal([]byte(`{"arg":{"channel":2,"level":-3.5}}`), inst))
	out, err := json.Marshal(inst)
	require.NoError(t, err)
	assert.JSONEq(t, `{"arg":{"channel":2,"level":-3.5}}`, string(out))
}

func TestExportedName(t *testing.T) {
	var testCases = []struct {
		input    string
		expected string
	}{
		{"arg", "Arg"},
		{"input_source", "InputSource"},
		{"2nd", "F2nd"},
		{"", "F"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, exportedName(tc.input), tc.input)
	}
}

func TestTypeOf_Cached(t *testing.T) {
	first, err := TypeOf(binding.Binding{Schema: map[string]interface{}{"type": "string", "enum": []interface{}{"On", "Off"}}})
	require.NoError(t, err)
	second, err := TypeOf(binding.Binding{Schema: map[string]interface{}{"enum": []interface{}{"On", "Off"}, "type": "string"}})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
