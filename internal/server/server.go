package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/config"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/database"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/schema"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools"
)

// Version is the server version reported to MCP clients.
const Version = "0.3.0"

const (
	httpReadHeaderTimeout = 10 * time.Second
	httpShutdownTimeout   = 5 * time.Second
)

// Neo4jMCPServer represents the MCP server instance
type Neo4jMCPServer struct {
	MCPServer  *server.MCPServer
	httpServer *http.Server
	config     *config.Config
	provider   *database.Provider
	dbService  database.Service
	sampler    *schema.Sampler
	registry   *tools.Registry
	log        *logger.Service
}

// NewNeo4jMCPServer creates a new MCP server instance. The database connection
// is established lazily on the first tool call, so construction succeeds even
// while the backend is still coming up.
func NewNeo4jMCPServer(cfg *config.Config) (*Neo4jMCPServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Logs go to stderr: in stdio mode stdout belongs to the protocol.
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	provider := database.NewProvider(cfg, log)
	dbService := database.NewNeo4jService(provider, cfg, log)

	s := &Neo4jMCPServer{
		config:    cfg,
		provider:  provider,
		dbService: dbService,
		sampler:   schema.NewSampler(dbService, log),
		log:       log,
	}

	hooks := &server.Hooks{}
	hooks.AddAfterSetLevel(s.onAfterSetLevelHook)

	s.MCPServer = server.NewMCPServer(
		"mcp-neo4j-cypher",
		Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithHooks(hooks),
		server.WithInstructions("This server exposes a Neo4j database to agents. "+
			"Infer the data model with get_neo4j_schema, query it with read_neo4j_cypher, and mutate it with write_neo4j_cypher."),
	)

	return s, nil
}

// Start registers the tools and serves on the configured transport. It blocks
// until the server is stopped or fails.
func (s *Neo4jMCPServer) Start(ctx context.Context) error {
	s.log.Info("starting Neo4j MCP server", "version", Version, "transport", s.config.TransportMode)

	if err := s.RegisterTools(); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	switch s.config.TransportMode {
	case config.TransportModeHTTP:
		return s.startHTTP()
	case config.TransportModeStdio:
		s.log.Info("listening on stdio")
		return server.ServeStdio(s.MCPServer)
	default:
		return fmt.Errorf("unsupported transport mode: %s", s.config.TransportMode)
	}
}

func (s *Neo4jMCPServer) startHTTP() error {
	addr := fmt.Sprintf("%s:%s", s.config.HTTPHost, s.config.HTTPPort)

	streamable := server.NewStreamableHTTPServer(
		s.MCPServer,
		server.WithEndpointPath(s.config.HTTPPath),
		server.WithStateLess(true),
	)

	mux := http.NewServeMux()
	mux.Handle(s.config.HTTPPath, streamable)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: httpReadHeaderTimeout,
	}

	s.log.Info("listening on HTTP", "addr", addr, "path", s.config.HTTPPath)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down and releases the shared driver handle.
func (s *Neo4jMCPServer) Stop(ctx context.Context) error {
	s.log.Info("stopping Neo4j MCP server")

	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, httpShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("HTTP server shutdown failed", "error", err)
		}
	}

	return s.provider.Close(ctx)
}
