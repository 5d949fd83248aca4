package cypher

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/render"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools"
)

// GetSchemaHandler returns the handler function for the get_neo4j_schema tool
func GetSchemaHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetSchema(ctx, request, deps)
	}
}

func handleGetSchema(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if deps.Schema == nil {
		errMessage := "schema sampler is not initialized"
		deps.Log.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	var args GetSchemaInput
	if err := request.BindArguments(&args); err != nil {
		deps.Log.Error("failed to bind arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	sampleSize := args.SampleSize
	if sampleSize <= 0 {
		sampleSize = deps.Config.SchemaSampleSize
	}

	requestID := uuid.NewString()
	deps.Log.Info("sampling database schema", "request_id", requestID, "sample_size", sampleSize)

	summary, err := deps.Schema.Sample(ctx, sampleSize)
	if err != nil {
		deps.Log.Error("schema sampling failed", "request_id", requestID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	// An empty database legitimately has an empty schema; that renders as {}
	// and is a success, not an error.
	response, err := render.Value(summary)
	if err != nil {
		deps.Log.Error("failed to encode schema summary", "request_id", requestID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response), nil
}
