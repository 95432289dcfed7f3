package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/museumsvictoria/nodel-sub003/host"
	"github.com/museumsvictoria/nodel-sub003/host/config"
	"github.com/museumsvictoria/nodel-sub003/internal/conv"
)

var (
	cfgPath string

	svcOnce sync.Once
	svcInst *host.Service
	svcErr  error
)

// setConfigPath remembers the CLI-level -f/--config parameter so that the
// service singleton can be created lazily by whichever sub-command runs.
func setConfigPath(p string) { cfgPath = p }

// loadConfig reads the configured file (when given) and applies NODEL_*
// environment overrides.
func loadConfig(ctx context.Context, URL string) (*config.Config, error) {
	cfg := &config.Config{}
	if URL != "" {
		var err error
		if cfg, err = config.Load(ctx, URL); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if os.Getenv("NODEL_DEBUG_CONFIG") == "1" {
		_ = json.NewEncoder(os.Stderr).Encode(cfg)
	}
	return cfg, nil
}

// serviceSingleton initialises a host.Service once and reuses it across
// sub-commands within the same CLI invocation.
func serviceSingleton() (*host.Service, error) {
	svcOnce.Do(func() {
		ctx := context.Background()
		cfg, err := loadConfig(ctx, cfgPath)
		if err != nil {
			svcErr = err
			return
		}
		svcInst, svcErr = host.New(ctx, host.WithConfig(cfg))
	})
	return svcInst, svcErr
}

// parseArg decodes a CLI argument as JSON, taking anything that is not valid
// JSON as a plain string.
func parseArg(raw string) interface{} {
	if raw == "" {
		return nil
	}
	if v, err := conv.Decode([]byte(raw)); err == nil {
		return v
	}
	return raw
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
