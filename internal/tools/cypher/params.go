package cypher

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Params is a map of Cypher query parameters with custom JSON unmarshaling
// that keeps numeric fidelity for the driver:
//   - whole numbers (1, 42, -10) become int64
//   - numbers with a fractional part (1.5, 3.14) become float64
//   - everything else (strings, booleans, null, nested values) is kept as-is
//
// Without this, encoding/json would hand every number to the driver as
// float64 and integer IDs above 2^53 would silently lose precision.
type Params map[string]any

func (p *Params) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	converted, ok := convertNumbers(raw).(map[string]any)
	if !ok {
		return fmt.Errorf("cypher parameters must be a JSON object")
	}
	*p = converted
	return nil
}

// convertNumbers walks the decoded value and resolves every json.Number to
// int64 when it has no fractional part, float64 otherwise.
func convertNumbers(input any) any {
	switch v := input.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()

	case map[string]any:
		for k, val := range v {
			v[k] = convertNumbers(val)
		}
		return v

	case []any:
		for i, val := range v {
			v[i] = convertNumbers(val)
		}
		return v
	}
	return input
}
