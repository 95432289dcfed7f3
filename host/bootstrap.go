package host

import (
	"context"
	"fmt"
	"os"

	"github.com/museumsvictoria/nodel-sub003/host/config"
	"github.com/museumsvictoria/nodel-sub003/host/dispatch"
	"github.com/museumsvictoria/nodel-sub003/host/flow"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/host/toolkit"
	"github.com/museumsvictoria/nodel-sub003/internal/logging"
	"github.com/viant/fluxor"
	"github.com/viant/fluxor/model/types"
)

// init orchestrates the preparation steps once all options have been applied.
func (s *Service) init(ctx context.Context) error {
	if err := s.initDefaults(); err != nil {
		return err
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.initWorkflowService()
	s.lifecycle.handler = dispatch.New(s.registry,
		dispatch.WithLogger(s.logger),
		dispatch.WithNodeResolver(s.resolveNode),
	)
	if err := s.loadNodes(ctx); err != nil {
		s.disposeNodes()
		return fmt.Errorf("load nodes: %w", err)
	}
	return nil
}

// initDefaults applies fall-back values for dependencies not supplied
// through options.
func (s *Service) initDefaults() error {
	if s.config == nil {
		s.config = &config.Config{}
	}
	s.config.Init()
	if s.logger == nil {
		logger, err := logging.New(s.config.Log.Level, s.config.Log.Format, os.Stderr)
		if err != nil {
			return fmt.Errorf("invalid log config: %w", err)
		}
		s.logger = logger
	}
	if s.registry == nil {
		s.registry = registry.New(registry.WithLogger(s.logger))
	}
	s.nodes = map[string]*toolkit.Toolkit{}
	s.flow = flow.New(s.registry)
	return nil
}

// initWorkflowService assembles the fluxor options and instantiates the
// engine with the node actions registered as the "nodel" service.
func (s *Service) initWorkflowService() {
	opts := append([]fluxor.Option{}, s.config.WorkflowOptions...)
	if len(s.config.ExtensionTypes) > 0 {
		opts = append(opts, fluxor.WithExtensionTypes(s.config.ExtensionTypes...))
	}
	extensions := append([]types.Service{s.flow}, resolveBuiltinServices(s.config.Builtins)...)
	extensions = append(extensions, s.Workflow.Extensions...)
	opts = append(opts, fluxor.WithExtensionServices(extensions...))
	// caller supplied options come last so they can override the defaults
	opts = append(opts, s.Workflow.Options...)

	s.Workflow.Service = fluxor.New(opts...)
	s.Workflow.Runtime = s.Workflow.Service.Runtime()
}
