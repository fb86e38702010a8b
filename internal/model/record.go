// Package model holds the data types shared across the evaluation pipeline:
// extracted records, field schemas, tabular data, and comparison results.
package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Record is one report's flat mapping of field name to scalar value.
// All values are carried as strings; numeric and boolean literals from the
// LLM response are coerced on decode.
type Record map[string]string

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// UnmarshalJSON decodes a flat JSON object, coercing non-string scalars
// (numbers, booleans, null) to their string form. Nested objects or arrays
// are rejected: a record is strictly key → scalar.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return eris.Wrap(err, "model: decode record")
	}

	out := make(Record, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			if val {
				out[k] = "true"
			} else {
				out[k] = "false"
			}
		case nil:
			out[k] = ""
		default:
			return eris.Errorf("model: field %q is not a scalar", k)
		}
	}
	*r = out
	return nil
}

// NormalizeID strips all whitespace from a report identifier so the spaced
// ("RRI 002") and compact ("RRI002") forms compare equal.
func NormalizeID(id string) string {
	return strings.Join(strings.Fields(id), "")
}
