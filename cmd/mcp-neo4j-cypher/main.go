package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/config"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/server"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "-v" {
		// The standard log package writes to stderr; the version is the one
		// thing that explicitly belongs on stdout.
		fmt.Printf("mcp-neo4j-cypher version: %s\n", server.Version)
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mcpServer, err := server.NewNeo4jMCPServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx := context.Background()
	defer func() {
		if err := mcpServer.Stop(ctx); err != nil {
			log.Fatalf("Error stopping server: %v", err)
		}
	}()

	// Blocks until the server is stopped
	if err := mcpServer.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
