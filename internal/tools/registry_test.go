package tools_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/mcperr"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools"
)

func echoTool(name string) server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(name, mcp.WithDescription("test tool")),
		Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("handled:" + request.Params.Name), nil
		},
	}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("namespace prefixes every registered name", func(t *testing.T) {
		registry := tools.NewRegistry("staging")
		registry.Add(echoTool("read_neo4j_cypher"))

		names := registry.Names()
		if len(names) != 1 || names[0] != "staging-read_neo4j_cypher" {
			t.Errorf("unexpected names: %v", names)
		}

		listed := registry.List()
		if len(listed) != 1 || listed[0].Tool.Name != "staging-read_neo4j_cypher" {
			t.Errorf("unexpected listed tools: %v", listed)
		}
	})

	t.Run("empty namespace leaves names bare", func(t *testing.T) {
		registry := tools.NewRegistry("")
		registry.Add(echoTool("get_neo4j_schema"))

		if got := registry.Names()[0]; got != "get_neo4j_schema" {
			t.Errorf("expected bare name, got %q", got)
		}
	})

	t.Run("dispatch routes to the namespaced name", func(t *testing.T) {
		registry := tools.NewRegistry("prod")
		registry.Add(echoTool("read_neo4j_cypher"))

		result, err := registry.Dispatch(ctx, "prod-read_neo4j_cypher", map[string]any{"query": "RETURN 1"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		text, ok := result.Content[0].(mcp.TextContent)
		if !ok || text.Text != "handled:prod-read_neo4j_cypher" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("unprefixed name misses when a namespace is set", func(t *testing.T) {
		registry := tools.NewRegistry("prod")
		registry.Add(echoTool("read_neo4j_cypher"))

		_, err := registry.Dispatch(ctx, "read_neo4j_cypher", nil)
		if !mcperr.IsKind(err, mcperr.KindUnknownTool) {
			t.Errorf("expected UnknownToolError, got: %v", err)
		}
	})

	t.Run("unknown tool error names the available tools", func(t *testing.T) {
		registry := tools.NewRegistry("")
		registry.Add(echoTool("get_neo4j_schema"))
		registry.Add(echoTool("read_neo4j_cypher"))

		_, err := registry.Dispatch(ctx, "run_neo4j_cypher", nil)
		if !mcperr.IsKind(err, mcperr.KindUnknownTool) {
			t.Fatalf("expected UnknownToolError, got: %v", err)
		}
		if msg := err.Error(); !strings.Contains(msg, "get_neo4j_schema") || !strings.Contains(msg, "read_neo4j_cypher") {
			t.Errorf("expected available tools in message, got: %s", msg)
		}
	})

	t.Run("registration order is preserved", func(t *testing.T) {
		registry := tools.NewRegistry("")
		registry.Add(echoTool("get_neo4j_schema"))
		registry.Add(echoTool("read_neo4j_cypher"))
		registry.Add(echoTool("write_neo4j_cypher"))

		want := []string{"get_neo4j_schema", "read_neo4j_cypher", "write_neo4j_cypher"}
		got := registry.Names()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, got)
			}
		}
	})
}
