package render_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/render"
)

func TestValue(t *testing.T) {
	t.Run("map keys render in sorted order", func(t *testing.T) {
		got, err := render.Value(map[string]any{"zebra": 1, "alpha": 2, "mid": 3})
		require.NoError(t, err)
		assert.Less(t, strings.Index(got, "alpha"), strings.Index(got, "mid"))
		assert.Less(t, strings.Index(got, "mid"), strings.Index(got, "zebra"))
	})

	t.Run("same value renders to identical text", func(t *testing.T) {
		value := map[string]any{"b": []any{1, 2}, "a": "x"}
		first, err := render.Value(value)
		require.NoError(t, err)
		second, err := render.Value(value)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, render.EstimateTokens(""))
	assert.Equal(t, 1, render.EstimateTokens("abc"))
	assert.Equal(t, 1, render.EstimateTokens("abcd"))
	assert.Equal(t, 2, render.EstimateTokens("abcde"))

	t.Run("estimate is monotonic in text length", func(t *testing.T) {
		prev := 0
		for n := 0; n < 64; n++ {
			got := render.EstimateTokens(strings.Repeat("x", n))
			assert.GreaterOrEqual(t, got, prev)
			prev = got
		}
	})
}

func makeRows(n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]any{"row": i, "padding": strings.Repeat("p", 40)})
	}
	return rows
}

func TestRows(t *testing.T) {
	t.Run("nil rows render as an empty array", func(t *testing.T) {
		got, err := render.Rows(nil, 0)
		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})

	t.Run("zero limit disables truncation", func(t *testing.T) {
		got, err := render.Rows(makeRows(50), 0)
		require.NoError(t, err)
		assert.NotContains(t, got, "omitted")

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(got), &decoded))
		assert.Len(t, decoded, 50)
	})

	t.Run("result under the limit is untouched", func(t *testing.T) {
		rows := makeRows(2)
		got, err := render.Rows(rows, 1_000_000)
		require.NoError(t, err)
		assert.NotContains(t, got, "omitted")
	})

	t.Run("oversized result drops whole rows and says so", func(t *testing.T) {
		rows := makeRows(100)
		got, err := render.Rows(rows, 300)
		require.NoError(t, err)
		require.Contains(t, got, "omitted")

		// The kept prefix must still be valid JSON.
		body := got[:strings.LastIndex(got, "\n\n")]
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(body), &decoded))
		assert.NotEmpty(t, decoded)
		assert.Less(t, len(decoded), 100)

		assert.Contains(t, got, fmt.Sprintf("of %d rows omitted", 100))
		assert.LessOrEqual(t, render.EstimateTokens(got), 300)
	})

	t.Run("limit below a single row yields the notice with zero rows", func(t *testing.T) {
		rows := makeRows(5)
		got, err := render.Rows(rows, 1)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "[]"), "expected empty array prefix, got: %q", got)
		assert.Contains(t, got, "5 of 5 rows omitted")
	})

	t.Run("truncation never errors for any limit", func(t *testing.T) {
		rows := makeRows(10)
		for _, limit := range []int{-1, 0, 1, 2, 10, 100, 1000, 1 << 20} {
			_, err := render.Rows(rows, limit)
			assert.NoError(t, err, "limit %d", limit)
		}
	})
}
