// Command client is a manual smoke test: it spawns the server binary over
// stdio, lists the exposed tools, and runs a schema fetch plus a trivial read
// query against the configured database.
//
// Usage: go run ./client/... bin/mcp-neo4j-cypher
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./client/... <path_to_server_binary>")
	}

	c, err := client.NewStdioMCPClient(
		os.Args[1],
		os.Environ(), // passthrough environment, the server reads its NEO4J_* config from it
		os.Args[2:]...,
	)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()
	captureServerLog(c)

	if err := c.Start(ctx); err != nil {
		log.Fatalf("Failed to start client: %v", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "smoke-test-client",
		Version: "1.0.0",
	}

	serverInfo, err := c.Initialize(ctx, initRequest)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	fmt.Printf("Initialized with server: %s %s\n\n", serverInfo.ServerInfo.Name, serverInfo.ServerInfo.Version)

	if err := c.Ping(ctx); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Println("Server is alive and responding")

	toolsResult, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		log.Fatalf("Failed to list tools: %v", err)
	}
	fmt.Printf("Server has %d tools available\n", len(toolsResult.Tools))
	for i, tool := range toolsResult.Tools {
		fmt.Printf("  %d. %s\n", i+1, tool.Name)
	}

	callTool(ctx, c, findTool(toolsResult.Tools, "get_neo4j_schema"), nil)
	callTool(ctx, c, findTool(toolsResult.Tools, "read_neo4j_cypher"), map[string]any{
		"query": "RETURN 1 AS ok",
	})

	fmt.Println("Smoke test finished. Shutting down...")
}

// findTool resolves a tool by its base name, tolerating a namespace prefix.
func findTool(tools []mcp.Tool, baseName string) string {
	for _, tool := range tools {
		if tool.Name == baseName || len(tool.Name) > len(baseName) && tool.Name[len(tool.Name)-len(baseName)-1:] == "-"+baseName {
			return tool.Name
		}
	}
	log.Fatalf("Tool %q not found on server", baseName)
	return ""
}

func callTool(ctx context.Context, c *client.Client, name string, args map[string]any) {
	fmt.Printf("\nCalling %s...\n", name)

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := c.CallTool(ctx, request)
	if err != nil {
		log.Fatalf("Tool call %s failed: %v", name, err)
	}
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			fmt.Println(text.Text)
		}
	}
}

func captureServerLog(c *client.Client) {
	if stderr, ok := client.GetStderr(c); ok {
		go func() {
			buf := make([]byte, 4096)
			for {
				n, err := stderr.Read(buf)
				if err != nil {
					if err != io.EOF {
						log.Printf("Error reading stderr: %v", err)
					}
					return
				}
				if n > 0 {
					fmt.Fprintf(os.Stderr, "[Server] %s", buf[:n])
				}
			}
		}()
	}
}
