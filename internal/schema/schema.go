package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrKindNotFound is returned when no schema is registered for an entity kind
	ErrKindNotFound = errors.New("entity kind not found")
	// ErrUnknownField is returned when a record carries a field its schema does not declare
	ErrUnknownField = errors.New("unknown field")
	// ErrUnresolvedReference is returned when a many-to-many element could not be resolved to a row
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// Relation describes a field that points at rows of another kind
type Relation struct {
	Field  string // name used in import records, e.g. "user"
	Column string // foreign key column, e.g. "user_id"; empty for many-to-many
	Target string // related entity kind
	Many   bool
}

// Schema is the explicit description of one entity kind
type Schema struct {
	Kind      string
	Fields    []string
	Relations map[string]Relation
	Defaults  map[string]any
	New       func() any
}

// Relation returns the relation declared for field, if any
func (s *Schema) Relation(field string) (Relation, bool) {
	rel, ok := s.Relations[field]
	return rel, ok
}

func (s *Schema) hasField(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func (s *Schema) columnAlias(field string) bool {
	for _, rel := range s.Relations {
		if !rel.Many && rel.Column == field {
			return true
		}
	}
	return false
}

// Build constructs a new entity of this kind from a record. Resolved
// references are stored as their ids; raw values on relation fields are
// written to the foreign key column unchanged.
func (s *Schema) Build(rec Record) (any, error) {
	payload := make(map[string]any, len(rec)+len(s.Defaults))
	for k, v := range s.Defaults {
		payload[k] = v
	}

	for field, value := range rec {
		if rel, ok := s.Relations[field]; ok {
			if rel.Many {
				rows, err := manyRows(rel, value)
				if err != nil {
					return nil, err
				}
				payload[field] = rows
				continue
			}
			if ref, ok := value.(Reference); ok {
				payload[rel.Column] = ref.ID
			} else {
				payload[rel.Column] = value
			}
			continue
		}
		if s.hasField(field) || s.columnAlias(field) {
			payload[field] = value
			continue
		}
		return nil, fmt.Errorf("%s has no field %q: %w", s.Kind, field, ErrUnknownField)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", s.Kind, err)
	}

	entity := s.New()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(entity); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", s.Kind, err)
	}
	return entity, nil
}

func manyRows(rel Relation, value any) ([]any, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q expects a list of %s ids, got %T", rel.Field, rel.Target, value)
	}
	rows := make([]any, 0, len(items))
	for _, item := range items {
		ref, ok := item.(Reference)
		if !ok {
			return nil, fmt.Errorf("field %q: %s %v: %w", rel.Field, rel.Target, item, ErrUnresolvedReference)
		}
		rows = append(rows, ref.Row)
	}
	return rows, nil
}

// Registry maps entity kind names to schemas
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry creates a registry holding the given schemas
func NewRegistry(schemas ...*Schema) *Registry {
	r := &Registry{schemas: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a schema
func (r *Registry) Register(s *Schema) {
	r.schemas[strings.ToLower(s.Kind)] = s
}

// Lookup finds the schema for a kind; matching ignores case
func (r *Registry) Lookup(kind string) (*Schema, error) {
	s, ok := r.schemas[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, ErrKindNotFound)
	}
	return s, nil
}

// Kinds returns the registered kind names sorted alphabetically
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.schemas))
	for _, s := range r.schemas {
		kinds = append(kinds, s.Kind)
	}
	sort.Strings(kinds)
	return kinds
}
