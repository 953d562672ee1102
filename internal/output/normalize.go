package output

import "fmt"

// NormalizeJSONValue rewrites a CBOR-decoded value into shapes
// encoding/json accepts: map keys become strings and nested containers
// are normalized recursively.
func NormalizeJSONValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, entry := range v {
			out[fmt.Sprintf("%v", key)] = NormalizeJSONValue(entry)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, entry := range v {
			out[key] = NormalizeJSONValue(entry)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = NormalizeJSONValue(entry)
		}
		return out
	default:
		return v
	}
}
