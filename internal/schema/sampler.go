// Package schema builds a compact summary of the graph data model by sampling
// a bounded number of instances per label and relationship type. It depends
// only on the built-in db.labels() and db.relationshipTypes() procedures, so
// it works on any reachable deployment regardless of installed plugins.
package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/database"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
)

// Property describes one property key observed on an entity. Types holds the
// sorted set of value type names seen across the sample; more than one entry
// means instances disagree on the property's type.
type Property struct {
	Types []string `json:"types"`
}

// Connection is one (start label, end label) pair observed for a relationship
// type.
type Connection struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Entity summarizes a node label or relationship type.
type Entity struct {
	Type        string              `json:"type"`
	Properties  map[string]Property `json:"properties"`
	Connections []Connection        `json:"connections,omitempty"`
}

// Summary maps each label and relationship type name to its entity summary.
type Summary map[string]Entity

const (
	entityNode         = "node"
	entityRelationship = "relationship"
)

// Sampler derives the schema summary through read queries on the database
// service. Cost is bounded at O(labels x sampleSize) regardless of graph size.
type Sampler struct {
	db  database.Service
	log *logger.Service
}

// NewSampler creates a new Sampler instance
func NewSampler(db database.Service, log *logger.Service) *Sampler {
	return &Sampler{db: db, log: log}
}

// Sample inspects at most sampleSize instances per label and relationship type
// and returns the aggregated summary. An empty database yields an empty,
// non-nil summary.
func (s *Sampler) Sample(ctx context.Context, sampleSize int) (Summary, error) {
	summary := make(Summary)

	labels, err := s.names(ctx, "CALL db.labels() YIELD label RETURN label ORDER BY label", "label")
	if err != nil {
		return nil, err
	}
	for _, label := range labels {
		entity, err := s.sampleLabel(ctx, label, sampleSize)
		if err != nil {
			return nil, err
		}
		summary[label] = entity
	}

	relTypes, err := s.names(ctx, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType ORDER BY relationshipType", "relationshipType")
	if err != nil {
		return nil, err
	}
	for _, relType := range relTypes {
		entity, err := s.sampleRelationship(ctx, relType, sampleSize)
		if err != nil {
			return nil, err
		}
		summary[relType] = entity
	}

	s.log.Debug("schema sample complete", "labels", len(labels), "relationshipTypes", len(relTypes))
	return summary, nil
}

// names runs a single-column query and returns the string values in order.
func (s *Sampler) names(ctx context.Context, cypher, key string) ([]string, error) {
	records, err := s.db.ExecuteReadRaw(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		if name, ok := record.AsMap()[key].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *Sampler) sampleLabel(ctx context.Context, label string, sampleSize int) (Entity, error) {
	// Labels cannot be query parameters, so the identifier is escaped and
	// interpolated.
	cypher := fmt.Sprintf(
		"MATCH (n:%s) WITH n LIMIT $sampleSize RETURN properties(n) AS props",
		escapeIdentifier(label),
	)
	records, err := s.db.ExecuteReadRaw(ctx, cypher, map[string]any{"sampleSize": sampleSize})
	if err != nil {
		return Entity{}, err
	}

	types := make(map[string]map[string]struct{})
	for _, record := range records {
		observeProperties(types, record.AsMap()["props"])
	}

	return Entity{Type: entityNode, Properties: collectProperties(types)}, nil
}

func (s *Sampler) sampleRelationship(ctx context.Context, relType string, sampleSize int) (Entity, error) {
	cypher := fmt.Sprintf(
		"MATCH (a)-[r:%s]->(b) WITH a, r, b LIMIT $sampleSize "+
			"RETURN labels(a) AS startLabels, labels(b) AS endLabels, properties(r) AS props",
		escapeIdentifier(relType),
	)
	records, err := s.db.ExecuteReadRaw(ctx, cypher, map[string]any{"sampleSize": sampleSize})
	if err != nil {
		return Entity{}, err
	}

	types := make(map[string]map[string]struct{})
	connections := make(map[Connection]struct{})
	for _, record := range records {
		row := record.AsMap()
		observeProperties(types, row["props"])

		conn := Connection{Start: firstLabel(row["startLabels"]), End: firstLabel(row["endLabels"])}
		if conn.Start != "" || conn.End != "" {
			connections[conn] = struct{}{}
		}
	}

	return Entity{
		Type:        entityRelationship,
		Properties:  collectProperties(types),
		Connections: collectConnections(connections),
	}, nil
}

// observeProperties records the value type of every property in props, a
// properties() map straight off the driver.
func observeProperties(types map[string]map[string]struct{}, props any) {
	propsMap, ok := props.(map[string]any)
	if !ok {
		return
	}
	for key, value := range propsMap {
		if types[key] == nil {
			types[key] = make(map[string]struct{})
		}
		types[key][database.TypeName(value)] = struct{}{}
	}
}

func collectProperties(types map[string]map[string]struct{}) map[string]Property {
	properties := make(map[string]Property, len(types))
	for key, set := range types {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		properties[key] = Property{Types: names}
	}
	return properties
}

func collectConnections(set map[Connection]struct{}) []Connection {
	if len(set) == 0 {
		return nil
	}
	connections := make([]Connection, 0, len(set))
	for conn := range set {
		connections = append(connections, conn)
	}
	sort.Slice(connections, func(i, j int) bool {
		if connections[i].Start != connections[j].Start {
			return connections[i].Start < connections[j].Start
		}
		return connections[i].End < connections[j].End
	})
	return connections
}

func firstLabel(value any) string {
	labels, ok := value.([]any)
	if !ok || len(labels) == 0 {
		return ""
	}
	label, _ := labels[0].(string)
	return label
}

// escapeIdentifier backtick-quotes a label or relationship type name so it is
// safe to interpolate into a Cypher pattern.
func escapeIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
