package database

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/config"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/mcperr"
)

// DriverFactory constructs a Driver from connection parameters. Injected so
// tests can substitute a stub without reaching for the network.
type DriverFactory func(uri string, auth neo4j.AuthToken) (Driver, error)

func defaultDriverFactory(uri string, auth neo4j.AuthToken) (Driver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, err
	}
	return &neo4jDriverAdapter{driver: driver}, nil
}

// Provider owns the shared driver handle. The driver is not constructed at
// process start: the first Acquire builds it and verifies connectivity, so the
// server can come up and report healthy while the backend (or its secrets) is
// still on its way. A handle observed as broken is discarded via Invalidate
// and the next Acquire builds a fresh one.
//
// The mutex is held across construction and the liveness check, so concurrent
// first callers cannot race to build duplicate handles.
type Provider struct {
	cfg       *config.Config
	log       *logger.Service
	newDriver DriverFactory

	mu     sync.Mutex
	driver Driver
}

// NewProvider creates a Provider backed by the real Neo4j driver.
func NewProvider(cfg *config.Config, log *logger.Service) *Provider {
	return NewProviderWithFactory(cfg, log, defaultDriverFactory)
}

// NewProviderWithFactory creates a Provider with a custom driver factory.
func NewProviderWithFactory(cfg *config.Config, log *logger.Service, factory DriverFactory) *Provider {
	return &Provider{
		cfg:       cfg,
		log:       log,
		newDriver: factory,
	}
}

// Acquire returns the shared driver handle, constructing and verifying it on
// first use. Repeated calls return the cached handle without re-verifying
// liveness. Safe for concurrent use.
func (p *Provider) Acquire(ctx context.Context) (Driver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.driver != nil {
		return p.driver, nil
	}

	p.log.Info("creating Neo4j driver", "database", p.cfg.Database)

	driver, err := p.newDriver(p.cfg.URI, neo4j.BasicAuth(p.cfg.Username, p.cfg.Password, ""))
	if err != nil {
		return nil, mcperr.Wrap(mcperr.KindConnection, "failed to create Neo4j driver", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		// Do not cache a handle that never worked.
		_ = driver.Close(ctx)
		return nil, mcperr.Wrap(mcperr.KindConnection, "failed to verify Neo4j connectivity", err)
	}

	p.log.Info("Neo4j driver ready", "database", p.cfg.Database)
	p.driver = driver
	return driver, nil
}

// Invalidate discards the cached handle after an operation observed it as
// broken. The handle is compared against the cached one so a call racing with
// a rebuild cannot throw away a fresh driver.
func (p *Provider) Invalidate(ctx context.Context, driver Driver) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.driver == nil || p.driver != driver {
		return
	}

	p.log.Warn("invalidating Neo4j driver after connection failure")
	_ = p.driver.Close(ctx)
	p.driver = nil
}

// Close releases the cached driver handle, if any.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.driver == nil {
		return nil
	}
	err := p.driver.Close(ctx)
	p.driver = nil
	return err
}
