package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractConfigPath(t *testing.T) {
	var testCases = []struct {
		description string
		args        []string
		expect      string
	}{
		{description: "short flag", args: []string{"serve", "-f", "host.yaml"}, expect: "host.yaml"},
		{description: "long flag", args: []string{"list-nodes", "--config", "s3://bucket/host.yaml"}, expect: "s3://bucket/host.yaml"},
		{description: "assignment", args: []string{"call", "--config=host.yaml", "-n", "Projector"}, expect: "host.yaml"},
		{description: "dangling flag", args: []string{"serve", "-f"}, expect: ""},
		{description: "none", args: []string{"list-tools"}, expect: ""},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, extractConfigPath(testCase.args), testCase.description)
	}
}

func TestOptionsInit(t *testing.T) {
	var testCases = []struct {
		command string
		check   func(*Options) bool
	}{
		{"serve", func(o *Options) bool { return o.Serve != nil }},
		{"list-nodes", func(o *Options) bool { return o.ListNodes != nil }},
		{"list-actions", func(o *Options) bool { return o.ListActions != nil }},
		{"action", func(o *Options) bool { return o.Action != nil }},
		{"call", func(o *Options) bool { return o.Call != nil }},
		{"emit", func(o *Options) bool { return o.Emit != nil }},
		{"list-tools", func(o *Options) bool { return o.ListTools != nil }},
		{"tool", func(o *Options) bool { return o.Tool != nil }},
		{"run", func(o *Options) bool { return o.Run != nil }},
	}
	for _, testCase := range testCases {
		opts := &Options{}
		opts.Init(testCase.command)
		assert.True(t, testCase.check(opts), testCase.command)
	}
	opts := &Options{}
	opts.Init("unknown")
	assert.Nil(t, opts.Serve)
}

func TestParseArg(t *testing.T) {
	assert.Nil(t, parseArg(""))
	assert.Equal(t, 42.0, parseArg("42"))
	assert.Equal(t, map[string]interface{}{"lamp": "on"}, parseArg(`{"lamp":"on"}`))
	assert.Equal(t, "front", parseArg("front"))
}

func TestReadInput(t *testing.T) {
	_, err := readInput("1", "arg.json")
	assert.Error(t, err)
	v, err := readInput(`"On"`, "")
	assert.NoError(t, err)
	assert.Equal(t, "On", v)
}
