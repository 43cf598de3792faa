package signing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalJSON serializes v with its top-level object keys in sorted
// order. Nested objects keep whatever order encoding/json produces for
// them; only the top level is re-sorted, so the digest commits to a
// stable outer shape without re-canonicalizing the whole tree.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("signing: marshal: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("signing: value is not a JSON object: %w", err)
	}

	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("signing: marshal key: %w", err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(top[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
