// Package render shapes tool responses for the wire: canonical JSON encoding
// plus size-aware truncation of row sets so a response never blows past the
// configured token budget of the calling agent.
package render

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/mcperr"
)

// Value encodes v as indented JSON. Map keys come out sorted, so the same
// value always renders to the same text.
func Value(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", mcperr.Wrap(mcperr.KindSerialization, "failed to encode response", err)
	}
	return string(data), nil
}

// EstimateTokens returns a conservative token estimate for text. The heuristic
// (one token per four bytes, rounded up) overcounts for prose-like JSON, which
// errs on the side of truncating early rather than overshooting the limit.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// Rows encodes rows as a JSON array, dropping whole rows from the end until
// the rendered text fits tokenLimit. A limit of zero or less disables
// truncation. Truncated output carries an explicit notice naming how many rows
// were dropped; truncation itself never fails, even when the limit is too
// small for a single row.
func Rows(rows []map[string]any, tokenLimit int) (string, error) {
	if rows == nil {
		rows = []map[string]any{}
	}

	full, err := Value(rows)
	if err != nil {
		return "", err
	}
	if tokenLimit <= 0 || EstimateTokens(full) <= tokenLimit {
		return full, nil
	}

	fits := func(keep int) bool {
		text, err := renderTruncated(rows, keep)
		return err == nil && EstimateTokens(text) <= tokenLimit
	}

	// Rendered size grows with the number of kept rows, so binary search for
	// the largest prefix that still fits. Zero kept rows is the floor: the
	// notice alone may exceed the limit and is returned regardless.
	cut := sort.Search(len(rows), func(i int) bool { return !fits(i) })
	keep := cut - 1
	if keep < 0 {
		keep = 0
	}
	return renderTruncated(rows, keep)
}

func renderTruncated(rows []map[string]any, keep int) (string, error) {
	body, err := Value(rows[:keep])
	if err != nil {
		return "", err
	}
	omitted := len(rows) - keep
	return fmt.Sprintf("%s\n\n%d of %d rows omitted to keep the response within the configured token limit. Narrow the query or add LIMIT to see more.", body, omitted, len(rows)), nil
}
