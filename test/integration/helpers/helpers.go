//go:build integration

// Package helpers wires the integration suite to a disposable Neo4j instance
// managed through testcontainers. Each test gets its own TestContext with a
// unique label suffix, so tests can run in parallel against the shared
// container and clean up only their own data.
package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/config"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/database"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/schema"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools"
)

// UniqueLabel is a per-test node label, safe for parallel tests.
type UniqueLabel string

func (ul UniqueLabel) String() string {
	return string(ul)
}

// TestContext holds common test dependencies
type TestContext struct {
	Ctx           context.Context
	T             *testing.T
	TestID        string
	Service       database.Service
	Deps          *tools.ToolDependencies
	createdLabels map[string]bool
	labelMutex    sync.Mutex
}

var (
	baseCfg   *config.Config
	container testcontainers.Container
	once      sync.Once
)

// Start initializes shared resources for integration tests
func Start(ctx context.Context) {
	once.Do(func() {
		startOnce(ctx)
	})
}

func startOnce(ctx context.Context) {
	ctr, boltURI, err := createNeo4jContainer(ctx)
	if err != nil {
		log.Fatalf("failed to start shared neo4j container: %v", err)
	}
	container = ctr

	baseCfg = &config.Config{
		URI:              boltURI,
		Username:         config.GetEnvWithDefault("NEO4J_USERNAME", "neo4j"),
		Password:         config.GetEnvWithDefault("NEO4J_PASSWORD", "password"),
		Database:         config.GetEnvWithDefault("NEO4J_DATABASE", "neo4j"),
		ReadTimeout:      config.DefaultReadTimeout,
		SchemaSampleSize: config.DefaultSchemaSampleSize,
		LogLevel:         "error",
		LogFormat:        "text",
	}

	if err := waitForConnectivity(ctx, ctr); err != nil {
		_ = ctr.Terminate(ctx)
		log.Fatalf("failed to verify connectivity: %v", err)
	}
}

// Close cleans up shared resources used in integration tests
func Close(ctx context.Context) {
	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("Warning: failed to terminate container: %v", err)
	}
}

// BaseConfig returns a copy of the container-backed configuration, so tests
// can tweak fields (read-only mode, token limits) without affecting others.
func BaseConfig() *config.Config {
	cfg := *baseCfg
	return &cfg
}

// NewTestContext creates a new test context with automatic cleanup
func NewTestContext(t *testing.T) *TestContext {
	return NewTestContextWithConfig(t, BaseConfig())
}

// NewTestContextWithConfig creates a test context backed by the given config.
func NewTestContextWithConfig(t *testing.T, cfg *config.Config) *TestContext {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

	tc := &TestContext{
		Ctx:           ctx,
		T:             t,
		TestID:        makeTestID(),
		createdLabels: make(map[string]bool),
	}

	lg := logger.New(cfg.LogLevel, cfg.LogFormat, io.Discard)
	provider := database.NewProvider(cfg, lg)
	svc := database.NewNeo4jService(provider, cfg, lg)

	tc.Service = svc
	tc.Deps = &tools.ToolDependencies{
		Config:    cfg,
		DBService: svc,
		Schema:    schema.NewSampler(svc, lg),
		Log:       lg,
	}

	t.Cleanup(func() {
		tc.Cleanup()
		if err := provider.Close(context.Background()); err != nil {
			log.Printf("Warning: failed to close provider: %v", err)
		}
		cancel()
	})

	return tc
}

// Cleanup removes all nodes carrying labels created during the test.
func (tc *TestContext) Cleanup() {
	if tc.Service == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tc.labelMutex.Lock()
	labels := make([]string, 0, len(tc.createdLabels))
	for label := range tc.createdLabels {
		labels = append(labels, label)
	}
	tc.labelMutex.Unlock()

	for _, label := range labels {
		query := fmt.Sprintf("MATCH (n:`%s`) DETACH DELETE n", label)
		if _, err := tc.Service.ExecuteWriteQuery(ctx, query, nil); err != nil {
			log.Printf("Warning: cleanup failed for label=%s: %v", label, err)
		}
	}
}

// SeedNode creates a test node with a unique label and returns the label.
func (tc *TestContext) SeedNode(label string, props map[string]any) (UniqueLabel, error) {
	tc.T.Helper()

	uniqueLabel := tc.GetUniqueLabel(label)
	query := fmt.Sprintf("CREATE (n:`%s` $props)", uniqueLabel)
	_, err := tc.Service.ExecuteWriteQuery(tc.Ctx, query, map[string]any{"props": props})
	return uniqueLabel, err
}

// SeedRelationship creates two nodes joined by the given relationship type.
func (tc *TestContext) SeedRelationship(startLabel, relType, endLabel string, relProps map[string]any) (UniqueLabel, UniqueLabel, error) {
	tc.T.Helper()

	start := tc.GetUniqueLabel(startLabel)
	end := tc.GetUniqueLabel(endLabel)
	query := fmt.Sprintf("CREATE (a:`%s`)-[r:`%s` $props]->(b:`%s`)", start, relType, end)
	_, err := tc.Service.ExecuteWriteQuery(tc.Ctx, query, map[string]any{"props": relProps})
	return start, end, err
}

// GetUniqueLabel returns a unique label for the given base label and tracks it
// for cleanup.
func (tc *TestContext) GetUniqueLabel(label string) UniqueLabel {
	uniqueLabel := UniqueLabel(fmt.Sprintf("%s_%s", label, tc.TestID))

	tc.labelMutex.Lock()
	tc.createdLabels[string(uniqueLabel)] = true
	tc.labelMutex.Unlock()

	return uniqueLabel
}

// CallTool invokes an MCP tool handler and fails the test on an error result.
func (tc *TestContext) CallTool(handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	tc.T.Helper()

	res, err := handler(tc.Ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	})
	if err != nil {
		tc.T.Fatalf("tool call failed: %v", err)
	}
	if res == nil {
		tc.T.Fatal("tool returned nil response")
	}
	if res.IsError {
		tc.T.Fatalf("tool returned error: %+v", res)
	}

	return res
}

// CallToolExpectError invokes a handler and fails unless it produced an error
// result; the error text is returned.
func (tc *TestContext) CallToolExpectError(handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	tc.T.Helper()

	res, err := handler(tc.Ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	})
	if err != nil {
		tc.T.Fatalf("tool call failed: %v", err)
	}
	if res == nil || !res.IsError {
		tc.T.Fatalf("expected error result, got: %+v", res)
	}
	return ResponseText(tc.T, res)
}

// ResponseText extracts the text payload of a tool result.
func ResponseText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	if len(res.Content) == 0 {
		t.Fatal("response has no content")
	}
	textContent, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected TextContent, got %T", res.Content[0])
	}
	return textContent.Text
}

// ParseJSONResponse parses the text payload of a tool result into v.
func (tc *TestContext) ParseJSONResponse(res *mcp.CallToolResult, v any) {
	tc.T.Helper()

	raw := ResponseText(tc.T, res)
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		tc.T.Fatalf("failed to parse JSON response: %v\nraw: %s", err, raw)
	}
}

// AssertNodeProperties validates node properties match expected values
func AssertNodeProperties(t *testing.T, node map[string]any, expectedProps map[string]any) {
	t.Helper()

	props, ok := node["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected 'properties' to be a map, got %T: %+v", node["properties"], node)
	}

	for key, expectedVal := range expectedProps {
		actualVal, exists := props[key]
		if !exists {
			t.Errorf("property %q not found in node", key)
			continue
		}
		if actualVal != expectedVal {
			t.Errorf("property %q: expected %v (type=%T), got %v (type=%T)",
				key, expectedVal, expectedVal, actualVal, actualVal)
		}
	}
}

// AssertNodeHasLabel checks if a node has a specific label
func AssertNodeHasLabel(t *testing.T, node map[string]any, expectedLabel UniqueLabel) {
	t.Helper()

	labels, ok := node["labels"].([]any)
	if !ok {
		t.Fatalf("expected 'labels' to be a slice, got %T", node["labels"])
	}

	for _, label := range labels {
		if labelStr, ok := label.(string); ok && labelStr == string(expectedLabel) {
			return
		}
	}
	t.Errorf("label %q not found in node labels %v", expectedLabel, labels)
}

func makeTestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// createNeo4jContainer starts a Neo4j container for testing
func createNeo4jContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        config.GetEnvWithDefault("NEO4J_IMAGE", "neo4j:5.24.2-community"),
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": fmt.Sprintf("%s/%s",
				config.GetEnvWithDefault("NEO4J_USERNAME", "neo4j"),
				config.GetEnvWithDefault("NEO4J_PASSWORD", "password")),
		},
		WaitingFor: wait.ForListeningPort("7687/tcp").WithStartupTimeout(119 * time.Second),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, "", err
	}

	port, err := ctr.MappedPort(ctx, "7687/tcp")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, "", err
	}

	return ctr, fmt.Sprintf("bolt://%s:%s", host, port.Port()), nil
}

// waitForConnectivity polls the instance with exponential backoff until it
// accepts bolt connections.
func waitForConnectivity(ctx context.Context, ctr testcontainers.Container) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	drv, err := neo4j.NewDriverWithContext(baseCfg.URI, neo4j.BasicAuth(baseCfg.Username, baseCfg.Password, ""))
	if err != nil {
		return err
	}
	defer func() { _ = drv.Close(context.Background()) }()

	backoff := 100 * time.Millisecond
	maxBackoff := 2 * time.Second

	var lastErr error
	for {
		err := drv.VerifyConnectivity(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	var logs string
	if ctr != nil {
		rc, err := ctr.Logs(context.Background())
		if err == nil && rc != nil {
			b, rerr := io.ReadAll(rc)
			_ = rc.Close()
			if rerr == nil {
				logs = string(b)
			}
		}
	}

	if logs != "" {
		return fmt.Errorf("neo4j connectivity not ready: %v\ncontainer logs:\n%s", lastErr, logs)
	}
	return fmt.Errorf("neo4j connectivity not ready: %v", lastErr)
}
