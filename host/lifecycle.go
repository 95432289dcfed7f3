package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/fluxor"
	"github.com/viant/mcp"
	"golang.org/x/sync/errgroup"
)

const defaultMCPAddr = ":5000"

// ErrNotRunning is returned when a listener is bound after Stop.
var ErrNotRunning = errors.New("service is not running")

// lifecycle state written by Start; mu guards everything but handler.
type lifecycle struct {
	handler http.Handler

	mu      sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	servers []*http.Server
	addrs   map[string]net.Addr
}

// Start launches the fluxor runtime, the REST listener and, when enabled, the
// MCP listener. Listeners are bound before Start returns; only the first call
// has an effect. A failed Start stops the service.
func (s *Service) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.state, stateIdle, stateRunning) {
		return nil
	}
	if err := s.startWorkflow(ctx); err != nil {
		return s.abortStart(ctx, nil, err)
	}

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	group, groupCtx := errgroup.WithContext(workerCtx)
	s.lifecycle.mu.Lock()
	s.lifecycle.cancel = cancel
	s.lifecycle.group = group
	s.lifecycle.mu.Unlock()

	restServer := &http.Server{
		Addr:              s.config.HTTP.Addr,
		Handler:           s.lifecycle.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return groupCtx },
	}
	if err := s.serve(restServer, "rest"); err != nil {
		return s.abortStart(ctx, cancel, err)
	}

	if s.config.MCP.Enabled {
		server, err := mcp.NewServer(s.NewHandler, s.config.MCP.Server)
		if err != nil {
			return s.abortStart(ctx, cancel, fmt.Errorf("create mcp server: %w", err))
		}
		mcpServer := server.HTTP(groupCtx, "")
		if mcpServer.Addr == "" {
			mcpServer.Addr = defaultMCPAddr
		}
		if err := s.serve(mcpServer, "mcp"); err != nil {
			return s.abortStart(ctx, cancel, err)
		}
	}
	return nil
}

// abortStart stops the service after a failed Start. The runtime and worker
// context are released here too since a concurrent Stop may have run before
// Start created them.
func (s *Service) abortStart(ctx context.Context, cancel context.CancelFunc, cause error) error {
	_ = s.Stop(ctx)
	if cancel != nil {
		cancel()
	}
	_ = s.stopWorkflow(ctx)
	return cause
}

// serve binds server synchronously and runs it in the worker group. A Stop
// racing with Start makes it release the listener instead.
func (s *Service) serve(server *http.Server, kind string) error {
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s %v: %w", kind, server.Addr, err)
	}
	s.lifecycle.mu.Lock()
	defer s.lifecycle.mu.Unlock()
	if !s.Running() {
		_ = listener.Close()
		return fmt.Errorf("listen %s: %w", kind, ErrNotRunning)
	}
	if s.lifecycle.addrs == nil {
		s.lifecycle.addrs = map[string]net.Addr{}
	}
	s.lifecycle.servers = append(s.lifecycle.servers, server)
	s.lifecycle.addrs[kind] = listener.Addr()
	s.logger.Info("listening", "kind", kind, "addr", listener.Addr().String())
	s.lifecycle.group.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("listener failed", "kind", kind, "error", err)
			return fmt.Errorf("serve %s: %w", kind, err)
		}
		return nil
	})
	return nil
}

// Addr returns the bound REST address, or "" before Start.
func (s *Service) Addr() string {
	return s.boundAddr("rest")
}

// MCPAddr returns the bound MCP address, or "" when the MCP front end is off.
func (s *Service) MCPAddr() string {
	return s.boundAddr("mcp")
}

func (s *Service) boundAddr(kind string) string {
	s.lifecycle.mu.Lock()
	defer s.lifecycle.mu.Unlock()
	if addr, ok := s.lifecycle.addrs[kind]; ok {
		return addr.String()
	}
	return ""
}

// Stop shuts the listeners down within the configured timeout, stops the
// fluxor runtime and disposes every node. Only the first call has an effect;
// stopping a service that never started just disposes its nodes.
func (s *Service) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.state, stateRunning, stateStopped) {
		if atomic.CompareAndSwapInt32(&s.state, stateIdle, stateStopped) {
			s.disposeNodes()
		}
		return nil
	}
	s.logger.Info("stopping")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.HTTP.ShutdownTimeout())
	defer cancel()

	s.lifecycle.mu.Lock()
	servers := append([]*http.Server(nil), s.lifecycle.servers...)
	workerCancel, group := s.lifecycle.cancel, s.lifecycle.group
	s.lifecycle.mu.Unlock()

	var errs []error
	for _, server := range servers {
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %v: %w", server.Addr, err))
		}
	}
	if workerCancel != nil {
		workerCancel()
	}
	if group != nil {
		if err := group.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.stopWorkflow(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	s.disposeNodes()
	s.logger.Info("stopped")
	return errors.Join(errs...)
}

// Running reports whether Start succeeded and Stop has not been called.
func (s *Service) Running() bool {
	return atomic.LoadInt32(&s.state) == stateRunning
}

// WorkflowRuntime returns the fluxor runtime, starting it on first use so
// workflows can run without the listeners.
func (s *Service) WorkflowRuntime(ctx context.Context) (*fluxor.Runtime, error) {
	if err := s.startWorkflow(ctx); err != nil {
		return nil, err
	}
	return s.Workflow.Runtime, nil
}

// startWorkflow starts the fluxor runtime once.
func (s *Service) startWorkflow(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.workflowStarted, 0, 1) {
		return nil
	}
	if err := s.Workflow.Runtime.Start(ctx); err != nil {
		atomic.StoreInt32(&s.workflowStarted, 0)
		return fmt.Errorf("start workflow runtime: %w", err)
	}
	return nil
}

func (s *Service) stopWorkflow(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.workflowStarted, 1, 2) {
		return nil
	}
	if err := s.Workflow.Runtime.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown workflow runtime: %w", err)
	}
	return nil
}
