package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Mappings resolves type and status codes to human readable labels.
type Mappings struct {
	Types    map[string]string
	Statuses map[string]string
}

// TypeName returns the label of a type code, or the code itself when unknown.
func (m Mappings) TypeName(code string) string {
	if name, ok := m.Types[code]; ok && name != "" {
		return name
	}
	return code
}

// StatusName returns the label of a status code, or the code itself when unknown.
func (m Mappings) StatusName(code string) string {
	if name, ok := m.Statuses[code]; ok && name != "" {
		return name
	}
	return code
}

// DecodeMappings reads a mapping document keyed by attribute name. Only the
// type and status tables are read; other keys are ignored. A missing table is
// treated as empty so every lookup falls back to the code.
func DecodeMappings(r io.Reader) (Mappings, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Mappings{}, fmt.Errorf("decode mappings: %w", err)
	}

	types, err := labels(doc[KeyType])
	if err != nil {
		return Mappings{}, fmt.Errorf("decode mappings: %s: %w", KeyType, err)
	}
	statuses, err := labels(doc[KeyStatus])
	if err != nil {
		return Mappings{}, fmt.Errorf("decode mappings: %s: %w", KeyStatus, err)
	}

	return Mappings{Types: types, Statuses: statuses}, nil
}

func labels(raw json.RawMessage) (map[string]string, error) {
	out := make(map[string]string)
	if len(raw) == 0 {
		return out, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var table map[string]any
	if err := dec.Decode(&table); err != nil {
		return nil, err
	}
	for code, v := range table {
		out[code] = text(v)
	}
	return out, nil
}
