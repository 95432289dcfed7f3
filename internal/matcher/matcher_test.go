package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	var testCases = []struct {
		pattern   string
		candidate string
		matched   bool
	}{
		{"*", "anything", true},
		{"", "anything", false},

		{"Projector-PowerOn", "Projector-PowerOn", true},
		{"Projector-Power", "Projector-PowerOn", true},
		{"Projector-", "Projector-PowerOn", true},
		{"Proj-", "Projector-PowerOn", false},

		{"*-PowerOn", "Projector-PowerOn", true},
		{"*-PowerOn", "Projector-PowerOff", false},
		{"Projector-Power?ff", "Projector-PowerOff", true},
		{"[", "Projector", false},
	}

	for i, tc := range testCases {
		assert.Equal(t, tc.matched, Match(tc.pattern, tc.candidate), "[%d] Match(%q, %q)", i, tc.pattern, tc.candidate)
	}
}

func TestFilter(t *testing.T) {
	candidates := []string{"Projector-PowerOn", "Projector-PowerOff", "Amp-Mute"}
	assert.Equal(t, candidates, Filter(candidates))
	assert.Equal(t, []string{"Projector-PowerOn", "Projector-PowerOff"}, Filter(candidates, "Projector-"))
	assert.Equal(t, []string{"Projector-PowerOn", "Amp-Mute"}, Filter(candidates, "*On", "Amp"))
	assert.Nil(t, Filter(candidates, "Screen"))
}
