package server

import (
	"fmt"
	"log/slog"

	"github.com/seedstore/seedstore/pkg/config"
	"github.com/seedstore/seedstore/pkg/factory"
	"github.com/seedstore/seedstore/pkg/logging"
	"github.com/seedstore/seedstore/pkg/store"
)

// Server is the top-level facade: a record store, a graph builder, and
// the configuration plumbing that ties them together. It stands in for
// a remote persistence API during development and testing.
type Server struct {
	store   *store.Store
	builder *factory.Builder
	logger  *slog.Logger

	builderOpts []factory.Option
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a structured logger. Store mutations are logged
// at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxDepth bounds recursive record creation.
func WithMaxDepth(n int) Option {
	return func(s *Server) {
		s.builderOpts = append(s.builderOpts, factory.WithMaxDepth(n))
	}
}

// New creates an empty server. Types and factories are registered
// afterwards, either directly or by loading a configuration document.
func New(opts ...Option) *Server {
	s := &Server{logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.attach(store.New())
	return s
}

func (s *Server) attach(st *store.Store) {
	st.SetObserver(&logObserver{log: logging.Component(s.logger, "store")})
	s.store = st
	s.builder = factory.NewBuilder(st, s.builderOpts...)
}

// Store returns the underlying record store.
func (s *Server) Store() *store.Store { return s.store }

// Builder returns the underlying graph builder.
func (s *Server) Builder() *factory.Builder { return s.builder }

// RegisterType declares a record type on the store.
func (s *Server) RegisterType(cfg store.TypeConfig) error {
	if err := s.store.RegisterType(cfg); err != nil {
		return err
	}
	s.logger.Debug("registered type", "type", cfg.Name)
	return nil
}

// RegisterFactory installs a factory definition on the builder.
func (s *Server) RegisterFactory(d *factory.Definition) error {
	if err := s.builder.Register(d); err != nil {
		return err
	}
	s.logger.Debug("registered factory", "type", d.TypeName())
	return nil
}

// LoadConfig replaces the server's store and builder with ones built
// from the configuration document, then runs its seeds.
func (s *Server) LoadConfig(cfg *config.Config) error {
	st, b, err := config.Build(cfg, s.builderOpts...)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}
	st.SetObserver(&logObserver{log: logging.Component(s.logger, "store")})
	s.store = st
	s.builder = b
	s.logger.Info("configuration loaded", "types", len(cfg.Types), "factories", len(cfg.Factories))

	if err := config.Seed(b, cfg); err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}
	if len(cfg.Seeds) > 0 {
		s.logger.Info("seeds applied", "runs", len(cfg.Seeds))
	}
	return nil
}

// LoadConfigFile loads a YAML configuration document from disk.
func (s *Server) LoadConfigFile(path string) error {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	return s.LoadConfig(cfg)
}

// Create builds one record through the registered factory. Args are
// trait names (strings) and attribute overrides (maps).
func (s *Server) Create(typeName string, args ...any) (store.Record, error) {
	rec, err := s.builder.Create(typeName, args...)
	if err != nil {
		return store.Record{}, err
	}
	s.logger.Debug("created record", "type", typeName, "id", rec.ID)
	return rec, nil
}

// CreateList builds n records through the registered factory.
func (s *Server) CreateList(typeName string, n int, args ...any) ([]store.Record, error) {
	recs, err := s.builder.CreateList(typeName, n, args...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("created records", "type", typeName, "count", len(recs))
	return recs, nil
}

// Schema returns a handle for collection-oriented access.
func (s *Server) Schema() *SchemaHandle {
	return &SchemaHandle{server: s}
}

// Dump returns a deep copy of every collection, keyed by type name.
func (s *Server) Dump() map[string][]store.Attrs {
	return s.store.Dump()
}

// Reset removes every record while keeping registered types, factories
// and creation indices.
func (s *Server) Reset() {
	s.store.Reset()
	s.logger.Info("store reset")
}
