package tools

import (
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/config"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/database"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/schema"
)

// ToolDependencies contains all dependencies needed by tool handlers
type ToolDependencies struct {
	Config    *config.Config
	DBService database.Service
	Schema    *schema.Sampler
	Log       *logger.Service
}
