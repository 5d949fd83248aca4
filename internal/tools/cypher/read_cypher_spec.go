package cypher

import (
	"github.com/mark3labs/mcp-go/mcp"
)

type ReadCypherInput struct {
	Query  string `json:"query" jsonschema:"description=The read-only Cypher query to execute"`
	Params Params `json:"params,omitempty" jsonschema:"description=Parameters to pass to the Cypher query"`
}

func ReadCypherSpec() mcp.Tool {
	return mcp.NewTool("read_neo4j_cypher",
		mcp.WithDescription("read_neo4j_cypher executes a read-only Cypher query against the user-configured Neo4j database and returns the matching rows as JSON. Write clauses (CREATE, MERGE, DELETE, SET, ...) are rejected by the read transaction; use write_neo4j_cypher for those."),
		mcp.WithInputSchema[ReadCypherInput](),
		mcp.WithTitleAnnotation("Read Cypher"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
