//go:build integration

package integration

import (
	"testing"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/tools/cypher"
	"github.com/neo4j-labs/mcp-neo4j-cypher/test/integration/helpers"
)

type schemaEntity struct {
	Type       string `json:"type"`
	Properties map[string]struct {
		Types []string `json:"types"`
	} `json:"properties"`
	Connections []struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"connections"`
}

func TestGetSchema(t *testing.T) {
	t.Parallel()

	tc := helpers.NewTestContext(t)

	start, end, err := tc.SeedRelationship("Actor", "ACTED_IN", "Film", map[string]any{"roles": []any{"Neo"}})
	if err != nil {
		t.Fatalf("failed to seed data: %v", err)
	}
	if _, err := tc.SeedNode("Actor", map[string]any{"name": "Keanu", "born": 1964}); err != nil {
		t.Fatalf("failed to seed data: %v", err)
	}

	getSchema := cypher.GetSchemaHandler(tc.Deps)
	res := tc.CallTool(getSchema, map[string]any{})

	var summary map[string]schemaEntity
	tc.ParseJSONResponse(res, &summary)

	actorLabel := start.String()
	actor, ok := summary[actorLabel]
	if !ok {
		t.Fatalf("expected label %q in schema, got keys: %v", actorLabel, keys(summary))
	}
	if actor.Type != "node" {
		t.Errorf("expected node entity, got %q", actor.Type)
	}
	if types := actor.Properties["name"].Types; len(types) != 1 || types[0] != "STRING" {
		t.Errorf("expected name to be STRING, got %v", types)
	}
	if types := actor.Properties["born"].Types; len(types) != 1 || types[0] != "INTEGER" {
		t.Errorf("expected born to be INTEGER, got %v", types)
	}

	rel, ok := summary["ACTED_IN"]
	if !ok {
		t.Fatalf("expected relationship ACTED_IN in schema, got keys: %v", keys(summary))
	}
	if rel.Type != "relationship" {
		t.Errorf("expected relationship entity, got %q", rel.Type)
	}

	found := false
	for _, conn := range rel.Connections {
		if conn.Start == start.String() && conn.End == end.String() {
			found = true
		}
	}
	if !found {
		t.Errorf("expected connection %s -> %s, got %v", start, end, rel.Connections)
	}
}

func TestGetSchemaSampleSize(t *testing.T) {
	t.Parallel()

	tc := helpers.NewTestContext(t)

	if _, err := tc.SeedNode("Sampled", map[string]any{"v": 1}); err != nil {
		t.Fatalf("failed to seed data: %v", err)
	}

	// A tiny explicit sample still succeeds and still sees the label.
	getSchema := cypher.GetSchemaHandler(tc.Deps)
	res := tc.CallTool(getSchema, map[string]any{"sample_size": 1})

	var summary map[string]schemaEntity
	tc.ParseJSONResponse(res, &summary)

	label := tc.GetUniqueLabel("Sampled").String()
	if _, ok := summary[label]; !ok {
		t.Errorf("expected label %q in schema, got keys: %v", label, keys(summary))
	}
}

func keys(m map[string]schemaEntity) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
