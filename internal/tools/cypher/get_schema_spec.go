package cypher

import (
	"github.com/mark3labs/mcp-go/mcp"
)

type GetSchemaInput struct {
	SampleSize int `json:"sample_size,omitempty" jsonschema:"description=Maximum number of instances to inspect per label or relationship type. Defaults to the server configuration."`
}

func GetSchemaSpec() mcp.Tool {
	return mcp.NewTool("get_neo4j_schema",
		mcp.WithDescription("get_neo4j_schema lists all node labels with their properties and all relationship types with their endpoint labels, derived by sampling the user-configured Neo4j database. If the database contains no data, an empty schema is returned."),
		mcp.WithInputSchema[GetSchemaInput](),
		mcp.WithTitleAnnotation("Get Neo4j Schema"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
