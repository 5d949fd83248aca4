package cypher

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/render"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools"
)

// WriteCypherHandler returns the handler function for the write_neo4j_cypher tool
func WriteCypherHandler(deps *tools.ToolDependencies) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleWriteCypher(ctx, request, deps)
	}
}

func handleWriteCypher(ctx context.Context, request mcp.CallToolRequest, deps *tools.ToolDependencies) (*mcp.CallToolResult, error) {
	if deps.DBService == nil {
		errMessage := "database service is not initialized"
		deps.Log.Error(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	// Read-only deployments never register this tool; this guard covers
	// direct dispatch paths that bypass registration.
	if deps.Config.ReadOnly {
		errMessage := "server is running in read-only mode, write queries are not permitted"
		deps.Log.Warn(errMessage)
		return mcp.NewToolResultError(errMessage), nil
	}

	var args WriteCypherInput
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
	deps.Log.Debug("executing write query", "query_id", queryID, "query", args.Query)

	summary, err := deps.DBService.ExecuteWriteQuery(ctx, args.Query, map[string]any(args.Params))
	if err != nil {
		deps.Log.Error("write query failed", "query_id", queryID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	deps.Log.Info("write query applied", "query_id", queryID, "contains_updates", summary.ContainsUpdates)

	response, err := render.Value(summary)
	if err != nil {
		deps.Log.Error("failed to encode write summary", "query_id", queryID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response), nil
}
