package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools/cypher"
)

// RegisterTools builds the tool registry and adds the registered tools to the
// MCP server. When read-only mode is enabled, only tools annotated as
// read-only are registered: write_neo4j_cypher is absent from the listing
// rather than present-but-disabled, so agents never plan around a tool that
// cannot succeed. The configured namespace prefixes every tool name.
func (s *Neo4jMCPServer) RegisterTools() error {
	deps := &tools.ToolDependencies{
		Config:    s.config,
		DBService: s.dbService,
		Schema:    s.sampler,
		Log:       s.log,
	}

	registry := tools.NewRegistry(s.config.Namespace)
	for _, t := range getAllTools(deps) {
		if s.config.ReadOnly && (t.Tool.Annotations.ReadOnlyHint == nil || !*t.Tool.Annotations.ReadOnlyHint) {
			continue
		}
		registry.Add(t)
	}

	s.registry = registry
	s.MCPServer.AddTools(registry.List()...)
	return nil
}

// Registry returns the tool registry built by RegisterTools.
func (s *Neo4jMCPServer) Registry() *tools.Registry {
	return s.registry
}

// getAllTools returns all available tools with their specs and handlers
func getAllTools(deps *tools.ToolDependencies) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool:    cypher.GetSchemaSpec(),
			Handler: cypher.GetSchemaHandler(deps),
		},
		{
			Tool:    cypher.ReadCypherSpec(),
			Handler: cypher.ReadCypherHandler(deps),
		},
		{
			Tool:    cypher.WriteCypherSpec(),
			Handler: cypher.WriteCypherHandler(deps),
		},
	}
}
