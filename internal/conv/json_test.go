package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	type payload struct {
		Arg string `json:"arg"`
	}

	var out payload
	require.NoError(t, Convert(map[string]any{"arg": "on"}, &out))
	assert.Equal(t, "on", out.Arg)

	var same payload
	require.NoError(t, Convert(payload{Arg: "x"}, &same))
	assert.Equal(t, "x", same.Arg)

	assert.Error(t, Convert(1, nil))
	var notPtr payload
	assert.Error(t, Convert(1, notPtr))
}

func TestDecode(t *testing.T) {
	var testCases = []struct {
		input    string
		expected any
	}{
		{"", nil},
		{"   ", nil},
		{`"On"`, "On"},
		{`42`, float64(42)},
		{`{"level":3}`, map[string]any{"level": float64(3)}},
	}
	for _, tc := range testCases {
		actual, err := Decode([]byte(tc.input))
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, actual, tc.input)
	}

	_, err := Decode([]byte("{"))
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(1, 1.0))
	assert.True(t, Equal(map[string]int{"a": 1}, map[string]any{"a": 1.0}))
	assert.False(t, Equal("On", "Off"))
	assert.True(t, Equal(nil, nil))
}
