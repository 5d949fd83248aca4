package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/mcperr"
)

// Registry holds the tools exposed by the server, keyed by their externally
// visible name. When a namespace is configured every tool name carries it as a
// prefix, so multiple server instances pointed at different databases can
// coexist in one agent session without name collisions.
type Registry struct {
	namespace string
	order     []string
	byName    map[string]server.ServerTool
}

// NewRegistry creates an empty registry. An empty namespace leaves tool names
// unprefixed.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		namespace: namespace,
		byName:    make(map[string]server.ServerTool),
	}
}

// QualifiedName returns name with the namespace prefix applied.
func (r *Registry) QualifiedName(name string) string {
	if r.namespace == "" {
		return name
	}
	return r.namespace + "-" + name
}

// Add registers a tool under its namespaced name. Re-adding a name replaces
// the previous registration.
func (r *Registry) Add(tool server.ServerTool) {
	qualified := r.QualifiedName(tool.Tool.Name)
	tool.Tool.Name = qualified
	if _, exists := r.byName[qualified]; !exists {
		r.order = append(r.order, qualified)
	}
	r.byName[qualified] = tool
}

// List returns the registered tools in registration order, ready to hand to
// the MCP server.
func (r *Registry) List() []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.byName[name])
	}
	return tools
}

// Names returns the externally visible tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Dispatch invokes the handler registered under the exact (namespaced) name.
// A name with no registration fails with UnknownToolError naming the tools
// that do exist; it is never treated as a near-miss of one of them.
func (r *Registry) Dispatch(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, mcperr.Newf(mcperr.KindUnknownTool, "unknown tool %q, available tools: %s", name, strings.Join(r.Names(), ", "))
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = arguments
	return tool.Handler(ctx, request)
}
