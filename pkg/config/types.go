package config

import (
	"errors"
	"fmt"
)

// Config is the root configuration document.
type Config struct {
	// Types declares the record types and their associations.
	Types []TypeDef `yaml:"types" json:"types"`
	// Factories maps type names to factory definitions.
	Factories map[string]FactoryDef `yaml:"factories,omitempty" json:"factories,omitempty"`
	// Seeds are creation runs executed after registration.
	Seeds []SeedDef `yaml:"seeds,omitempty" json:"seeds,omitempty"`
}

// TypeDef declares one record type.
type TypeDef struct {
	// Name is the singular type name, e.g. "user".
	Name string `yaml:"name" json:"name"`
	// Strict enables strict schema mode for the type.
	Strict bool `yaml:"strict,omitempty" json:"strict,omitempty"`
	// Attributes is the strict-mode allow-list.
	Attributes []string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	// BelongsTo declares singular associations.
	BelongsTo []AssocDef `yaml:"belongsTo,omitempty" json:"belongsTo,omitempty"`
	// HasMany declares plural associations.
	HasMany []AssocDef `yaml:"hasMany,omitempty" json:"hasMany,omitempty"`
	// Schema is an optional JSON Schema document applied to every record.
	Schema map[string]any `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// AssocDef declares one association.
type AssocDef struct {
	// Name is the association name, e.g. "author".
	Name string `yaml:"name" json:"name"`
	// Target is the related type. Empty only for polymorphic associations.
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	// Inverse names the mirroring association on the target type.
	Inverse string `yaml:"inverse,omitempty" json:"inverse,omitempty"`
	// Polymorphic marks a belongs-to whose target varies per record.
	Polymorphic bool `yaml:"polymorphic,omitempty" json:"polymorphic,omitempty"`
}

// FactoryDef declares a factory: ordered attributes and named traits.
type FactoryDef struct {
	// Attrs are the attribute declarations, resolved in listed order.
	Attrs []AttrDef `yaml:"attrs,omitempty" json:"attrs,omitempty"`
	// Traits are named partial factories.
	Traits map[string]TraitDef `yaml:"traits,omitempty" json:"traits,omitempty"`
}

// TraitDef declares a trait's attributes.
type TraitDef struct {
	Attrs []AttrDef `yaml:"attrs,omitempty" json:"attrs,omitempty"`
}

// AttrDef declares one attribute: either a constant value or an expr-lang
// expression, never both.
type AttrDef struct {
	// Name is the attribute name.
	Name string `yaml:"name" json:"name"`
	// Value is a constant attribute value.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`
	// Expr is an expr-lang expression evaluated against {index, attrs}.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`
}

// SeedDef declares one seed run.
type SeedDef struct {
	// Type is the type to create.
	Type string `yaml:"type" json:"type"`
	// Count is the number of records; defaults to 1.
	Count int `yaml:"count,omitempty" json:"count,omitempty"`
	// Traits are applied to every created record, in order.
	Traits []string `yaml:"traits,omitempty" json:"traits,omitempty"`
	// Attrs are attribute overrides applied to every created record.
	Attrs map[string]any `yaml:"attrs,omitempty" json:"attrs,omitempty"`
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}
	if len(c.Types) == 0 {
		return errors.New("config declares no types")
	}

	names := make(map[string]bool, len(c.Types))
	for i, td := range c.Types {
		if td.Name == "" {
			return fmt.Errorf("types[%d]: name cannot be empty", i)
		}
		if names[td.Name] {
			return fmt.Errorf("type %q declared twice", td.Name)
		}
		names[td.Name] = true

		for _, a := range td.BelongsTo {
			if err := validateAssoc(td.Name, a, false); err != nil {
				return err
			}
		}
		for _, a := range td.HasMany {
			if err := validateAssoc(td.Name, a, true); err != nil {
				return err
			}
		}
	}

	for typeName, fd := range c.Factories {
		if !names[typeName] {
			return fmt.Errorf("factory %q has no matching type declaration", typeName)
		}
		if err := validateAttrs(typeName, fd.Attrs); err != nil {
			return err
		}
		for traitName, tr := range fd.Traits {
			if traitName == "" {
				return fmt.Errorf("factory %q: trait name cannot be empty", typeName)
			}
			if err := validateAttrs(typeName+"."+traitName, tr.Attrs); err != nil {
				return err
			}
		}
	}

	for i, seed := range c.Seeds {
		if seed.Type == "" {
			return fmt.Errorf("seeds[%d]: type cannot be empty", i)
		}
		if !names[seed.Type] {
			return fmt.Errorf("seeds[%d]: unknown type %q", i, seed.Type)
		}
		if seed.Count < 0 {
			return fmt.Errorf("seeds[%d]: count cannot be negative", i)
		}
	}

	return nil
}

func validateAssoc(typeName string, a AssocDef, plural bool) error {
	if a.Name == "" {
		return fmt.Errorf("type %q: association name cannot be empty", typeName)
	}
	if plural && a.Polymorphic {
		return fmt.Errorf("type %q: association %q: has-many associations cannot be polymorphic", typeName, a.Name)
	}
	if !a.Polymorphic && a.Target == "" {
		return fmt.Errorf("type %q: association %q: target cannot be empty", typeName, a.Name)
	}
	return nil
}

func validateAttrs(scope string, attrs []AttrDef) error {
	seen := make(map[string]bool, len(attrs))
	for i, a := range attrs {
		if a.Name == "" {
			return fmt.Errorf("factory %q: attrs[%d]: name cannot be empty", scope, i)
		}
		if seen[a.Name] {
			return fmt.Errorf("factory %q: attribute %q declared twice", scope, a.Name)
		}
		seen[a.Name] = true
		if a.Value != nil && a.Expr != "" {
			return fmt.Errorf("factory %q: attribute %q: value and expr are mutually exclusive", scope, a.Name)
		}
	}
	return nil
}
