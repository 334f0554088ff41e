package factory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/seedstore/seedstore/pkg/store"
)

// DefaultMaxDepth bounds hook-driven creation nesting.
const DefaultMaxDepth = 32

// Builder is the graph builder. It owns the registered factory definitions
// for one store and runs each creation request through trait composition,
// attribute resolution, association synthesis, persistence, and hooks.
type Builder struct {
	store    *store.Store
	defs     map[string]*Definition
	maxDepth int
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxDepth sets the recursion depth limit for hook-driven creation.
func WithMaxDepth(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxDepth = n
		}
	}
}

// NewBuilder creates a graph builder over the given store.
func NewBuilder(s *store.Store, opts ...Option) *Builder {
	b := &Builder{
		store:    s,
		defs:     make(map[string]*Definition),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Store returns the underlying record store.
func (b *Builder) Store() *store.Store { return b.store }

// Register adds a factory definition. The definition's type must already be
// registered on the store.
func (b *Builder) Register(d *Definition) error {
	if d == nil {
		return errors.New("definition cannot be nil")
	}
	if d.typeName == "" {
		return errors.New("definition type name cannot be empty")
	}
	if !b.store.HasType(d.typeName) {
		return fmt.Errorf("type %q not registered on store", d.typeName)
	}
	if _, exists := b.defs[d.typeName]; exists {
		return fmt.Errorf("factory for type %q already registered", d.typeName)
	}
	b.defs[d.typeName] = d
	return nil
}

// Definition returns the registered factory for a type, or nil.
func (b *Builder) Definition(typeName string) *Definition {
	return b.defs[typeName]
}

// Create runs the full creation pipeline for one record. Args are trait
// names (strings) and attribute overrides (store.Attrs or map[string]any);
// overrides always win over trait and base values. A type without a
// registered factory can still be created from overrides alone.
func (b *Builder) Create(typeName string, args ...any) (store.Record, error) {
	traits, overrides, err := splitArgs(args)
	if err != nil {
		return store.Record{}, err
	}
	return b.create(typeName, 0, traits, overrides)
}

// CreateList repeats the full pipeline n times, each record getting a fresh
// creation index, and returns the records in creation order.
func (b *Builder) CreateList(typeName string, n int, args ...any) ([]store.Record, error) {
	traits, overrides, err := splitArgs(args)
	if err != nil {
		return nil, err
	}
	out := make([]store.Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := b.create(typeName, 0, traits, overrides)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// create is the recursive entry point shared by Create, hook scopes, and
// association synthesis. depth tracks nesting across all three.
func (b *Builder) create(typeName string, depth int, traits []string, overrides store.Attrs) (store.Record, error) {
	if depth > b.maxDepth {
		return store.Record{}, &RecursionLimitError{Type: typeName, Limit: b.maxDepth}
	}

	var (
		defs  []attrDef
		hooks []Hook
	)
	if d := b.defs[typeName]; d != nil {
		var err error
		defs, hooks, err = d.compose(traits)
		if err != nil {
			return store.Record{}, err
		}
	} else if len(traits) > 0 {
		return store.Record{}, &UnknownTraitError{Type: typeName, Trait: traits[0]}
	}

	index, err := b.store.NextIndex(typeName)
	if err != nil {
		return store.Record{}, err
	}

	attrs, err := resolveAttrs(typeName, defs, index, overrides)
	if err != nil {
		return store.Record{}, err
	}

	if err := b.expandAssociations(typeName, depth, attrs); err != nil {
		return store.Record{}, err
	}

	rec, err := b.store.Insert(typeName, attrs)
	if err != nil {
		return store.Record{}, err
	}

	scope := &Scope{b: b, depth: depth + 1}
	for _, h := range hooks {
		if err := h(rec, scope); err != nil {
			return store.Record{}, err
		}
	}

	// Hooks may have rewired the record (created children update the
	// inverse side); re-read so the returned snapshot is current.
	if final, err := b.store.Find(typeName, rec.ID); err == nil {
		return final, nil
	}
	return rec, nil
}

// expandAssociations replaces every AssocSpec value with a freshly created
// record of the declared target type. Values supplied by the caller as real
// records are never replaced. Keys are processed in sorted order for
// deterministic creation indices.
func (b *Builder) expandAssociations(typeName string, depth int, attrs store.Attrs) error {
	var pending []string
	for key, v := range attrs {
		if _, ok := v.(*AssocSpec); ok {
			pending = append(pending, key)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.Strings(pending)

	for _, key := range pending {
		spec := attrs[key].(*AssocSpec)
		a, ok := b.store.AssociationFor(typeName, key)
		if !ok {
			return &UnsupportedAssociationError{
				Type:   typeName,
				Attr:   key,
				Reason: "no association declared under this attribute",
			}
		}
		if a.Kind() == store.KindHasMany {
			return &UnsupportedAssociationError{
				Type:   typeName,
				Attr:   key,
				Reason: "plural associations cannot be synthesized",
			}
		}
		if a.IsPolymorphic() {
			return &UnsupportedAssociationError{
				Type:   typeName,
				Attr:   key,
				Reason: "polymorphic associations cannot be synthesized",
			}
		}
		rec, err := b.create(a.Target(), depth+1, spec.traits, spec.overrides)
		if err != nil {
			return err
		}
		attrs[key] = rec
	}
	return nil
}

// Scope is the creation handle passed to post-creation hooks. It carries
// the nesting depth so recursive hook chains stay bounded.
type Scope struct {
	b     *Builder
	depth int
}

// Create creates a dependent record, re-entering the graph builder.
func (s *Scope) Create(typeName string, args ...any) (store.Record, error) {
	traits, overrides, err := splitArgs(args)
	if err != nil {
		return store.Record{}, err
	}
	return s.b.create(typeName, s.depth, traits, overrides)
}

// CreateList creates n dependent records.
func (s *Scope) CreateList(typeName string, n int, args ...any) ([]store.Record, error) {
	traits, overrides, err := splitArgs(args)
	if err != nil {
		return nil, err
	}
	out := make([]store.Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := s.b.create(typeName, s.depth, traits, overrides)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Store exposes the record store for updates and reads inside hooks.
func (s *Scope) Store() *store.Store { return s.b.store }

// splitArgs separates trait names from attribute overrides. Multiple
// override maps merge with later maps winning per key.
func splitArgs(args []any) ([]string, store.Attrs, error) {
	var traits []string
	var overrides store.Attrs

	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			traits = append(traits, v)
		case store.Attrs:
			overrides = mergeOverrides(overrides, v)
		case map[string]any:
			overrides = mergeOverrides(overrides, v)
		default:
			return nil, nil, fmt.Errorf("unsupported create argument of type %T (want trait name or attribute map)", arg)
		}
	}
	return traits, overrides, nil
}

func mergeOverrides(dst store.Attrs, src map[string]any) store.Attrs {
	if dst == nil {
		dst = make(store.Attrs, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
