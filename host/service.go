package host

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/museumsvictoria/nodel-sub003/host/config"
	"github.com/museumsvictoria/nodel-sub003/host/flow"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/host/toolkit"
	"github.com/viant/fluxor"
	"github.com/viant/fluxor/model/types"
)

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// Service hosts nodes and their front ends. Construction is handled by init
// in bootstrap.go; the lifecycle lives in lifecycle.go.
type Service struct {
	Workflow
	config   *config.Config
	registry *registry.Registry
	logger   *slog.Logger
	flow     *flow.Service

	mu    sync.RWMutex
	nodes map[string]*toolkit.Toolkit

	state           int32
	workflowStarted int32
	lifecycle       lifecycle
}

// Workflow holds the fluxor engine the node actions are registered with.
type Workflow struct {
	Options    []fluxor.Option
	Extensions []types.Service
	Service    *fluxor.Service
	Runtime    *fluxor.Runtime
}

// Config returns the effective configuration. Callers must treat it as
// read-only.
func (s *Service) Config() *config.Config { return s.config }

// Registry returns the name registry shared by every node.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger { return s.logger }

// Flow returns the fluxor service exposing the node actions.
func (s *Service) Flow() *flow.Service { return s.flow }

// Handler returns the REST dispatch handler.
func (s *Service) Handler() http.Handler { return s.lifecycle.handler }

// Option modifies a service before it is initialised.
type Option func(*Service)

// WithConfig sets the configuration. When omitted defaults apply.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithRegistry shares an existing registry instead of creating one.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Service) {
		s.registry = reg
	}
}

// WithLogger sets the logger. Without it one is built from the log config.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithWorkflowOptions appends fluxor options applied when the workflow engine
// is created.
func WithWorkflowOptions(opts ...fluxor.Option) Option {
	return func(s *Service) {
		s.Workflow.Options = append(s.Workflow.Options, opts...)
	}
}

// WithExtensions registers additional fluxor services next to the node
// actions.
func WithExtensions(ext ...types.Service) Option {
	return func(s *Service) {
		s.Workflow.Extensions = append(s.Workflow.Extensions, ext...)
	}
}

// New constructs a service; declarative nodes from the configuration are
// created before it returns.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	svc := &Service{}
	for _, opt := range opts {
		opt(svc)
	}
	if err := svc.init(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
