package database

import (
	"encoding/base64"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/mcperr"
)

// NormalizeRecords converts driver records into rows of transport-safe values,
// preserving the query's output column names.
func NormalizeRecords(records []*neo4j.Record) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			value, err := NormalizeValue(record.Values[i])
			if err != nil {
				return nil, err
			}
			row[key] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// NormalizeValue maps a driver value onto a JSON-serializable representation.
// The mapping is total over every value kind the driver can return: temporal
// values become ISO-8601 text, graph entities become maps of their labels/type
// plus properties, paths become the alternating node/relationship sequence.
// A value kind outside the closed set is a defect and fails loudly with
// SerializationError rather than being stringified silently.
func NormalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, bool, int64, float64, string:
		return v, nil

	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil

	case []any:
		normalized := make([]any, len(v))
		for i, item := range v {
			converted, err := NormalizeValue(item)
			if err != nil {
				return nil, err
			}
			normalized[i] = converted
		}
		return normalized, nil

	case map[string]any:
		normalized := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := NormalizeValue(item)
			if err != nil {
				return nil, err
			}
			normalized[key] = converted
		}
		return normalized, nil

	case dbtype.Node:
		return normalizeNode(v)

	case dbtype.Relationship:
		return normalizeRelationship(v)

	case dbtype.Path:
		// Alternating sequence: node, relationship, node, ...
		sequence := make([]any, 0, len(v.Nodes)+len(v.Relationships))
		for i, node := range v.Nodes {
			converted, err := normalizeNode(node)
			if err != nil {
				return nil, err
			}
			sequence = append(sequence, converted)
			if i < len(v.Relationships) {
				rel, err := normalizeRelationship(v.Relationships[i])
				if err != nil {
					return nil, err
				}
				sequence = append(sequence, rel)
			}
		}
		return sequence, nil

	case dbtype.Date:
		return v.Time().Format("2006-01-02"), nil

	case dbtype.LocalTime:
		return v.Time().Format("15:04:05.999999999"), nil

	case dbtype.Time:
		return v.Time().Format("15:04:05.999999999Z07:00"), nil

	case dbtype.LocalDateTime:
		return v.Time().Format("2006-01-02T15:04:05.999999999"), nil

	case time.Time:
		return v.Format(time.RFC3339Nano), nil

	case dbtype.Duration:
		return v.String(), nil

	case dbtype.Point2D:
		return map[string]any{
			"srid": int64(v.SpatialRefId),
			"x":    v.X,
			"y":    v.Y,
		}, nil

	case dbtype.Point3D:
		return map[string]any{
			"srid": int64(v.SpatialRefId),
			"x":    v.X,
			"y":    v.Y,
			"z":    v.Z,
		}, nil

	default:
		return nil, mcperr.Newf(mcperr.KindSerialization, "no transport mapping defined for value type %T", value)
	}
}

func normalizeNode(node dbtype.Node) (map[string]any, error) {
	props, err := NormalizeValue(node.Props)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"elementId":  node.ElementId,
		"labels":     node.Labels,
		"properties": props,
	}, nil
}

func normalizeRelationship(rel dbtype.Relationship) (map[string]any, error) {
	props, err := NormalizeValue(rel.Props)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"elementId":      rel.ElementId,
		"type":           rel.Type,
		"startElementId": rel.StartElementId,
		"endElementId":   rel.EndElementId,
		"properties":     props,
	}, nil
}

// TypeName reports the Neo4j type name of a property value, used by schema
// sampling to describe each property's apparent type. Properties in Neo4j are
// restricted to primitives, temporal/spatial values and homogeneous lists, so
// the closed set below covers them; anything else reports OTHER instead of
// failing a whole schema sample over one odd value.
func TypeName(value any) string {
	switch value.(type) {
	case nil:
		return "NULL"
	case bool:
		return "BOOLEAN"
	case int64:
		return "INTEGER"
	case float64:
		return "FLOAT"
	case string:
		return "STRING"
	case []byte:
		return "BYTES"
	case []any:
		return "LIST"
	case map[string]any:
		return "MAP"
	case dbtype.Date:
		return "DATE"
	case dbtype.LocalTime:
		return "LOCAL_TIME"
	case dbtype.Time:
		return "TIME"
	case dbtype.LocalDateTime:
		return "LOCAL_DATETIME"
	case time.Time:
		return "DATETIME"
	case dbtype.Duration:
		return "DURATION"
	case dbtype.Point2D, dbtype.Point3D:
		return "POINT"
	default:
		return "OTHER"
	}
}
