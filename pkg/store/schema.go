package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// TypeConfig declares one record type: its name, its associations, and an
// optional strict attribute schema.
type TypeConfig struct {
	// Name is the singular type name, e.g. "user".
	Name string
	// Associations are the relationships declared on this type.
	Associations []*Association
	// Strict enables strict schema mode for this type: attributes outside
	// the declared set are rejected with a ValidationError. The default is
	// permissive (unknown keys pass through).
	Strict bool
	// Attributes is the allow-list used in strict mode. Association storage
	// keys and "id" are always allowed.
	Attributes []string
	// Schema is an optional JSON Schema document validated against every
	// insert and update, independent of Strict.
	Schema map[string]any
}

// typeDef is the compiled registration of one type.
type typeDef struct {
	config  TypeConfig
	assocs  []*Association
	byName  map[string]*Association
	byKey   map[string]*Association
	allowed map[string]bool
	schema  *jsonschema.Schema
}

// RegisterType declares a new record type on the store. Types must be
// registered before records of that type can be created.
func (s *Store) RegisterType(cfg TypeConfig) error {
	if cfg.Name == "" {
		return errors.New("type name cannot be empty")
	}

	td := &typeDef{
		config: cfg,
		byName: make(map[string]*Association),
		byKey:  make(map[string]*Association),
	}

	for _, a := range cfg.Associations {
		if a == nil {
			return fmt.Errorf("type %q: association cannot be nil", cfg.Name)
		}
		if a.name == "" {
			return fmt.Errorf("type %q: association name cannot be empty", cfg.Name)
		}
		if _, dup := td.byName[a.name]; dup {
			return fmt.Errorf("type %q: association %q declared twice", cfg.Name, a.name)
		}
		if a.kind == KindHasMany && a.polymorphic {
			return fmt.Errorf("type %q: association %q: has-many associations cannot be polymorphic", cfg.Name, a.name)
		}
		if !a.polymorphic && a.target == "" {
			return fmt.Errorf("type %q: association %q: target type cannot be empty", cfg.Name, a.name)
		}
		td.assocs = append(td.assocs, a)
		td.byName[a.name] = a
		for _, key := range a.storageKeys() {
			td.byKey[key] = a
		}
	}

	if cfg.Strict {
		td.allowed = make(map[string]bool, len(cfg.Attributes))
		td.allowed["id"] = true
		for _, name := range cfg.Attributes {
			td.allowed[name] = true
		}
		for _, a := range td.assocs {
			td.allowed[a.name] = true
			for _, key := range a.storageKeys() {
				td.allowed[key] = true
			}
		}
	}

	if cfg.Schema != nil {
		compiled, err := compileSchema(cfg.Name, cfg.Schema)
		if err != nil {
			return fmt.Errorf("type %q: invalid schema: %w", cfg.Name, err)
		}
		td.schema = compiled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.types[cfg.Name]; exists {
		return fmt.Errorf("type %q already registered", cfg.Name)
	}

	s.types[cfg.Name] = td
	s.collections[cfg.Name] = newCollection(cfg.Name)
	return nil
}

// compileSchema compiles an inline JSON Schema document.
func compileSchema(typeName string, doc map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	url := "seedstore://types/" + typeName + "/schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// validate enforces strict mode and the optional JSON Schema against a
// fully translated attribute set. Called with the store lock held.
func (td *typeDef) validate(attrs Attrs) error {
	if td.allowed != nil {
		for key := range attrs {
			if !td.allowed[key] {
				return &ValidationError{
					Type:    td.config.Name,
					Field:   key,
					Message: "unknown attribute in strict schema mode",
				}
			}
		}
	}

	if td.schema != nil {
		// Round-trip through JSON so typed slices and numeric kinds become
		// plain decoded-JSON values the validator understands.
		data, err := json.Marshal(map[string]any(attrs))
		if err != nil {
			return &ValidationError{Type: td.config.Name, Message: err.Error()}
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return &ValidationError{Type: td.config.Name, Message: err.Error()}
		}
		if err := td.schema.Validate(decoded); err != nil {
			return &ValidationError{Type: td.config.Name, Message: err.Error()}
		}
	}

	return nil
}

// association returns the declaration occupying the given attribute key,
// matching either the association name or one of its storage keys.
func (td *typeDef) association(key string) *Association {
	if a, ok := td.byName[key]; ok {
		return a
	}
	return td.byKey[key]
}

// findInverse resolves the association on the concrete target type that
// mirrors a. An explicitly declared inverse name always wins; otherwise the
// first association on the target that points back at ownerType is used.
// Self-referential types must declare inverses explicitly.
func (s *Store) findInverse(ownerType string, a *Association, concreteTarget string) *Association {
	td := s.types[concreteTarget]
	if td == nil {
		return nil
	}
	if a.inverse != "" {
		return td.byName[a.inverse]
	}
	for _, cand := range td.assocs {
		if ownerType == concreteTarget && cand.name == a.name {
			continue
		}
		if cand.inverse != "" && cand.inverse != a.name {
			continue
		}
		if cand.polymorphic {
			if cand.inverse == a.name {
				return cand
			}
			continue
		}
		if cand.target == ownerType {
			return cand
		}
	}
	return nil
}

// AssociationFor looks up the association declared under the given
// attribute key (association name or storage key) for a type.
func (s *Store) AssociationFor(typeName, key string) (*Association, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	td, ok := s.types[typeName]
	if !ok {
		return nil, false
	}
	a := td.association(key)
	return a, a != nil
}

// HasType reports whether a type is registered.
func (s *Store) HasType(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[name]
	return ok
}
