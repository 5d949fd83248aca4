package cypher

import (
	"github.com/mark3labs/mcp-go/mcp"
)

type WriteCypherInput struct {
	Query  string `json:"query" jsonschema:"description=The Cypher query to execute with write access"`
	Params Params `json:"params,omitempty" jsonschema:"description=Parameters to pass to the Cypher query"`
}

func WriteCypherSpec() mcp.Tool {
	return mcp.NewTool("write_neo4j_cypher",
		mcp.WithDescription("write_neo4j_cypher executes a Cypher query with write access against the user-configured Neo4j database and returns the update counters (nodes created, properties set, ...) instead of rows."),
		mcp.WithInputSchema[WriteCypherInput](),
		mcp.WithTitleAnnotation("Write Cypher"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
