package factory

import "github.com/seedstore/seedstore/pkg/store"

// Generator produces one attribute value for an in-progress record. It
// receives the per-type creation index and read access to the attributes
// already resolved for the same record.
type Generator func(g *Gen) (any, error)

// Hook is post-creation logic. It receives the just-created record and a
// scope whose Create/CreateList re-enter the graph builder for dependent
// records.
type Hook func(rec store.Record, scope *Scope) error

// attrDef is one declared attribute: a constant when gen is nil, otherwise
// a generator.
type attrDef struct {
	name  string
	value any
	gen   Generator
}

// Definition is the factory recipe for one record type: ordered attribute
// declarations, named traits, and an optional post-creation hook.
type Definition struct {
	typeName string
	attrs    []attrDef
	hook     Hook
	traits   map[string]*Trait
}

// New starts a factory definition for the given type.
func New(typeName string) *Definition {
	return &Definition{
		typeName: typeName,
		traits:   make(map[string]*Trait),
	}
}

// Set declares a constant attribute. Redeclaring a name replaces its value
// but keeps its original position in the resolution order.
func (d *Definition) Set(name string, value any) *Definition {
	d.attrs = setAttr(d.attrs, attrDef{name: name, value: value})
	return d
}

// Gen declares a generated attribute.
func (d *Definition) Gen(name string, fn Generator) *Definition {
	d.attrs = setAttr(d.attrs, attrDef{name: name, gen: fn})
	return d
}

// Trait declares a named trait. Traits are inert until a create call names
// them.
func (d *Definition) Trait(name string, t *Trait) *Definition {
	d.traits[name] = t
	return d
}

// AfterCreate declares the base post-creation hook. It always runs before
// any trait hook.
func (d *Definition) AfterCreate(h Hook) *Definition {
	d.hook = h
	return d
}

// TypeName returns the type this definition generates.
func (d *Definition) TypeName() string { return d.typeName }

// Trait is a partial factory definition: attributes and an optional hook.
type Trait struct {
	attrs []attrDef
	hook  Hook
}

// NewTrait starts an empty trait definition.
func NewTrait() *Trait {
	return &Trait{}
}

// Set declares a constant attribute on the trait.
func (t *Trait) Set(name string, value any) *Trait {
	t.attrs = setAttr(t.attrs, attrDef{name: name, value: value})
	return t
}

// Gen declares a generated attribute on the trait.
func (t *Trait) Gen(name string, fn Generator) *Trait {
	t.attrs = setAttr(t.attrs, attrDef{name: name, gen: fn})
	return t
}

// AfterCreate declares the trait's post-creation hook.
func (t *Trait) AfterCreate(h Hook) *Trait {
	t.hook = h
	return t
}

// setAttr replaces an existing declaration in place or appends a new one.
func setAttr(defs []attrDef, ad attrDef) []attrDef {
	for i, existing := range defs {
		if existing.name == ad.name {
			defs[i] = ad
			return defs
		}
	}
	return append(defs, ad)
}

// AssocSpec marks an attribute for association synthesis: the graph builder
// replaces it with a freshly created record of the associated type, unless
// the caller supplies the attribute explicitly. Build one with Assoc or
// AssocWith.
type AssocSpec struct {
	traits    []string
	overrides store.Attrs
}

// Assoc declares that the attribute should be filled by creating one record
// of the associated type, applying the named traits.
func Assoc(traits ...string) *AssocSpec {
	return &AssocSpec{traits: traits}
}

// AssocWith is Assoc with attribute overrides for the synthesized record.
func AssocWith(overrides store.Attrs, traits ...string) *AssocSpec {
	return &AssocSpec{traits: traits, overrides: overrides}
}
