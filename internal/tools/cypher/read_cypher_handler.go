package cypher

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/render"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools"
)

// ReadCypherHandler returns the handler function for the read_neo4j_cypher tool
func ReadCypherHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleReadCypher(ctx, request, deps)
	}
}

func handleReadCypher(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if deps.DBService == nil {
		errMessage := "database service is not initialized"
		deps.Log.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	var args ReadCypherInput
	if err := request.BindArguments(&args); err != nil {
		deps.Log.Error("failed to bind arguments", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if args.Query == "" {
		errMessage := "query parameter is required and cannot be empty"
		deps.Log.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	queryID := uuid.NewString()
	deps.Log.Debug("executing read query", "query_id", queryID, "query", args.Query)

	// The read transaction is the enforcement point: the server rejects any
	// write clause inside it, so no query text inspection happens here.
	rows, err := deps.DBService.ExecuteReadQuery(ctx, args.Query, map[string]any(args.Params))
	if err != nil {
		deps.Log.Error("read query failed", "query_id", queryID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := render.Rows(rows, deps.Config.ResponseTokenLimit)
	if err != nil {
		deps.Log.Error("failed to encode query results", "query_id", queryID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response), nil
}
