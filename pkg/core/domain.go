// Document is the central entity of the domain.
package core

import (
	"encoding/json"
	"fmt"
)

// Reserved document keys.
const (
	KeyID   = "id"
	KeyType = "doc_type"
)

// Document is a schema-less record. Values are JSON-representable; the
// "id" and "doc_type" keys are reserved and managed by the store.
type Document map[string]any

// ID returns the document identifier, or "" if unset.
func (d Document) ID() string {
	id, _ := d[KeyID].(string)
	return id
}

// Type returns the document type, or "" if unset.
func (d Document) Type() string {
	t, _ := d[KeyType].(string)
	return t
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Document:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// Normalize converts a caller-supplied document into its JSON form, so that
// the in-memory value matches what a reload from disk produces.
func Normalize(d Document) (Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("%w: document is not JSON-representable: %v", ErrInvalidInput, err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return out, nil
}

// normalizeValue converts a single value into its JSON form.
func normalizeValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
