package model

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// SchemaField is one expected field with its default value.
type SchemaField struct {
	Name    string
	Default string
}

// Schema is the canonical, ordered set of fields an extraction template
// expects. Field names are unique; the schema is immutable after load.
// Go maps do not preserve JSON key order, so the template's field order is
// captured explicitly at parse time and used as the canonical order for
// tie-breaking and tabular output.
type Schema struct {
	fields []SchemaField
	index  map[string]int
}

// NewSchema builds a schema from an ordered field list.
func NewSchema(fields []SchemaField) (*Schema, error) {
	s := &Schema{
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			return nil, eris.Errorf("model: duplicate schema field %q", f.Name)
		}
		s.index[f.Name] = i
	}
	return s, nil
}

// ParseSchema reads a flat JSON template object, preserving field order.
func ParseSchema(data []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, eris.Wrap(err, "model: parse template")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, eris.New("model: template is not a JSON object")
	}

	var fields []SchemaField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, eris.Wrap(err, "model: parse template key")
		}
		key := keyTok.(string)

		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, eris.Wrapf(err, "model: parse template value for %q", key)
		}
		def, err := scalarString(key, val)
		if err != nil {
			return nil, err
		}
		fields = append(fields, SchemaField{Name: key, Default: def})
	}

	return NewSchema(fields)
}

// LoadSchema reads a JSON template file into a Schema.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read template %s", path)
	}
	return ParseSchema(data)
}

func scalarString(key string, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	default:
		return "", eris.Errorf("model: template default for %q is not a scalar", key)
	}
}

// Fields returns the schema's fields in canonical order.
func (s *Schema) Fields() []SchemaField {
	return s.fields
}

// Keys returns the field names in canonical order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Name
	}
	return keys
}

// Has reports whether the schema contains the named field.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Default returns the default value for the named field.
func (s *Schema) Default(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.fields[i].Default, true
}

// Pos returns the field's canonical position, or -1 if absent.
func (s *Schema) Pos(name string) int {
	i, ok := s.index[name]
	if !ok {
		return -1
	}
	return i
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}
