package host

import (
	"sort"
	"strings"

	"github.com/viant/fluxor/model/types"
	"github.com/viant/fluxor/service/action/nop"
	"github.com/viant/fluxor/service/action/printer"
	"github.com/viant/fluxor/service/action/system/exec"
	"github.com/viant/fluxor/service/action/system/secret"
	"github.com/viant/fluxor/service/action/system/storage"
)

// builtinFactories lists the fluxor action services that can be created
// without dependencies, keyed by the service name they expose.
var builtinFactories = map[string]func() types.Service{
	"nop":            func() types.Service { return nop.New() },
	"printer":        func() types.Service { return printer.New() },
	"system/exec":    func() types.Service { return exec.New() },
	"system/storage": func() types.Service { return storage.New() },
	"system/secret":  func() types.Service { return secret.New() },
}

// resolveBuiltinServices turns patterns ("*", a "system/" style prefix or an
// exact name) into service instances, each at most once.
func resolveBuiltinServices(patterns []string) []types.Service {
	selected := make(map[string]struct{})
	for _, p := range patterns {
		isPrefix := strings.HasSuffix(p, "/")
		for n := range builtinFactories {
			if p == "*" || n == p || (isPrefix && strings.HasPrefix(n, p)) {
				selected[n] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(selected))
	for n := range selected {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]types.Service, 0, len(names))
	for _, n := range names {
		out = append(out, builtinFactories[n]())
	}
	return out
}
