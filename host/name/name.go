package name

import (
	"strings"
	"unicode"
)

// Reduce strips white space and hyphens from original, keeping every other
// rune in order and case.
func Reduce(original string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, original)
}

// Name pairs a display name with its reduced form.
type Name struct {
	Original string `json:"original" yaml:"original"`
	Reduced  string `json:"reduced" yaml:"reduced"`
}

// New creates a Name; original is kept verbatim.
func New(original string) Name {
	return Name{Original: original, Reduced: Reduce(original)}
}

// Key returns the lookup key.
func (n Name) Key() string { return n.Reduced }

// IsEmpty reports whether nothing is left after reduction.
func (n Name) IsEmpty() bool { return n.Reduced == "" }

func (n Name) String() string { return n.Original }

// Endpoint identifies one member of one node, e.g. "Projector-PowerOn".
type Endpoint string

func (e Endpoint) Node() string {
	s := string(e)
	if idx := strings.LastIndex(s, "-"); idx != -1 {
		return s[:idx]
	}
	return s
}

func (e Endpoint) Member() string {
	s := string(e)
	if idx := strings.LastIndex(s, "-"); idx != -1 {
		return s[idx+1:]
	}
	return ""
}

func (e Endpoint) String() string {
	return string(e)
}

// NewEndpoint joins a node and a member name. The member is reduced so the
// last hyphen always separates the two parts.
func NewEndpoint(node, member string) Endpoint {
	return Endpoint(node + "-" + Reduce(member))
}
