package factory

import (
	"sort"

	"github.com/seedstore/seedstore/pkg/store"
)

// Gen is the context handed to attribute generators: the per-type creation
// index and the attributes resolved so far for the in-progress record.
type Gen struct {
	typeName string
	attrName string
	index    int
	resolved store.Attrs
}

// Index returns the creation index: 0-based, counting prior factory
// creations of this type for the lifetime of the store.
func (g *Gen) Index() int { return g.index }

// Attr returns a sibling attribute that has already been resolved.
// Attributes resolve in declaration order, so only earlier-declared
// siblings (and overrides of them) are visible; anything else is an
// UnresolvedDependencyError.
func (g *Gen) Attr(name string) (any, error) {
	if v, ok := g.resolved[name]; ok {
		return v, nil
	}
	return nil, &UnresolvedDependencyError{
		Type:       g.typeName,
		Attr:       g.attrName,
		Dependency: name,
	}
}

// Resolved returns a snapshot of every attribute resolved so far. Intended
// for generators that hand the partial record to an expression evaluator;
// prefer Attr for single dependencies since it reports unresolved reads.
func (g *Gen) Resolved() store.Attrs {
	out := make(store.Attrs, len(g.resolved))
	for k, v := range g.resolved {
		out[k] = v
	}
	return out
}

// resolveAttrs evaluates a merged attribute list into a concrete attribute
// set. Overrides always win: an overridden generator is never invoked.
// Declaration order is the evaluation order, so each generator sees every
// earlier attribute already resolved. Override keys with no declaration are
// appended afterwards in sorted order.
func resolveAttrs(typeName string, defs []attrDef, index int, overrides store.Attrs) (store.Attrs, error) {
	out := make(store.Attrs, len(defs)+len(overrides))
	declared := make(map[string]bool, len(defs))

	for _, ad := range defs {
		declared[ad.name] = true
		if v, ok := overrides[ad.name]; ok {
			out[ad.name] = v
			continue
		}
		if ad.gen == nil {
			out[ad.name] = ad.value
			continue
		}
		v, err := ad.gen(&Gen{
			typeName: typeName,
			attrName: ad.name,
			index:    index,
			resolved: out,
		})
		if err != nil {
			return nil, err
		}
		out[ad.name] = v
	}

	extra := make([]string, 0, len(overrides))
	for k := range overrides {
		if !declared[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out[k] = overrides[k]
	}

	return out, nil
}
