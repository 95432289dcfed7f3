package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ServeCmd starts the REST front end, and the MCP one when enabled in the
// config, until SIGINT or SIGTERM.
type ServeCmd struct {
	Addr string `short:"a" long:"addr" description:"REST listen address (overrides config)"`
	MCP  bool   `short:"m" long:"mcp" description:"also expose actions as MCP tools"`
}

func (c *ServeCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	cfg := svc.Config()
	if c.Addr != "" {
		cfg.HTTP.Addr = c.Addr
	}
	if c.MCP {
		cfg.MCP.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := svc.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("REST listening on %s\n", svc.Addr())
	if addr := svc.MCPAddr(); addr != "" {
		fmt.Printf("MCP listening on %s\n", addr)
	}

	<-ctx.Done()
	fmt.Println("shutting down…")
	return svc.Stop(context.Background())
}
