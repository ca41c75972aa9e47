// Package mcp exposes the prompt builder to agents as MCP tools over any
// go-sdk transport.
package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/orchestrator"
	"github.com/goliatone/go-promptform/pkg/render"
)

// Server answers tool calls against one registry. Every call that touches
// form state builds its own controller without storage, so calls never share
// or persist state.
type Server struct {
	registry  *config.Registry
	renderers *render.Registry
	logger    *zap.Logger
	version   string
	mcp       *sdk.Server
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger handed to per-call controllers.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderers replaces the prompt format registry.
func WithRenderers(renderers *render.Registry) Option {
	return func(s *Server) {
		if renderers != nil {
			s.renderers = renderers
		}
	}
}

// NewServer builds the server and registers its tools.
func NewServer(reg *config.Registry, version string, opts ...Option) (*Server, error) {
	if reg == nil {
		return nil, fmt.Errorf("mcp: registry is nil")
	}
	s := &Server{
		registry: reg,
		logger:   zap.NewNop(),
		version:  version,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderers == nil {
		renderers, err := render.NewDefaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("mcp: renderers: %w", err)
		}
		s.renderers = renderers
	}
	s.mcp = sdk.NewServer(&sdk.Implementation{
		Name:    "promptform",
		Version: version,
	}, nil)
	s.registerTools()
	return s, nil
}

// Run serves until ctx is done or the transport closes.
func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

func (s *Server) controller(ctx context.Context) (*orchestrator.Controller, error) {
	return orchestrator.New(ctx, s.registry,
		orchestrator.WithLogger(s.logger),
		orchestrator.WithRenderers(s.renderers),
		orchestrator.WithVersion(s.version),
	)
}
