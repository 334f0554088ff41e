package config

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/seedstore/seedstore/pkg/factory"
	"github.com/seedstore/seedstore/pkg/store"
)

// Build registers the declared types and factories on a fresh store and
// graph builder. Attribute expressions are compiled once, here; evaluation
// errors surface at creation time with the offending expression text.
func Build(cfg *Config, opts ...factory.Option) (*store.Store, *factory.Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	s := store.New()
	for _, td := range cfg.Types {
		if err := s.RegisterType(typeConfig(td)); err != nil {
			return nil, nil, err
		}
	}

	b := factory.NewBuilder(s, opts...)
	for _, td := range cfg.Types {
		fd, ok := cfg.Factories[td.Name]
		if !ok {
			continue
		}
		def, err := buildFactory(td.Name, fd)
		if err != nil {
			return nil, nil, err
		}
		if err := b.Register(def); err != nil {
			return nil, nil, err
		}
	}

	return s, b, nil
}

// Seed executes the configured seed runs through the builder.
func Seed(b *factory.Builder, cfg *Config) error {
	for i, sd := range cfg.Seeds {
		count := sd.Count
		if count == 0 {
			count = 1
		}
		args := make([]any, 0, len(sd.Traits)+1)
		for _, tr := range sd.Traits {
			args = append(args, tr)
		}
		if len(sd.Attrs) > 0 {
			args = append(args, sd.Attrs)
		}
		if _, err := b.CreateList(sd.Type, count, args...); err != nil {
			return fmt.Errorf("seeds[%d] (%s): %w", i, sd.Type, err)
		}
	}
	return nil
}

func typeConfig(td TypeDef) store.TypeConfig {
	cfg := store.TypeConfig{
		Name:       td.Name,
		Strict:     td.Strict,
		Attributes: td.Attributes,
		Schema:     td.Schema,
	}
	for _, a := range td.BelongsTo {
		decl := store.BelongsTo(a.Name, a.Target)
		if a.Inverse != "" {
			decl = decl.Inverse(a.Inverse)
		}
		if a.Polymorphic {
			decl = decl.Polymorphic()
		}
		cfg.Associations = append(cfg.Associations, decl)
	}
	for _, a := range td.HasMany {
		decl := store.HasMany(a.Name, a.Target)
		if a.Inverse != "" {
			decl = decl.Inverse(a.Inverse)
		}
		cfg.Associations = append(cfg.Associations, decl)
	}
	return cfg
}

func buildFactory(typeName string, fd FactoryDef) (*factory.Definition, error) {
	def := factory.New(typeName)
	for _, ad := range fd.Attrs {
		if err := applyAttr(typeName, ad, def.Set, def.Gen); err != nil {
			return nil, err
		}
	}

	// Map order is random; register traits in sorted order so repeated
	// builds behave identically.
	traitNames := make([]string, 0, len(fd.Traits))
	for name := range fd.Traits {
		traitNames = append(traitNames, name)
	}
	sort.Strings(traitNames)

	for _, name := range traitNames {
		tr := factory.NewTrait()
		for _, ad := range fd.Traits[name].Attrs {
			if err := applyAttr(typeName+"."+name, ad, tr.Set, tr.Gen); err != nil {
				return nil, err
			}
		}
		def.Trait(name, tr)
	}
	return def, nil
}

// applyAttr installs one declared attribute through the appropriate
// setter pair (definition or trait).
func applyAttr[D any](scope string, ad AttrDef, set func(string, any) D, gen func(string, factory.Generator) D) error {
	if ad.Expr == "" {
		set(ad.Name, ad.Value)
		return nil
	}
	program, err := compileAttr(ad.Expr)
	if err != nil {
		return fmt.Errorf("factory %q: attribute %q: compile %q: %w", scope, ad.Name, ad.Expr, err)
	}
	gen(ad.Name, exprGenerator(ad.Expr, program, attrRefs(ad.Expr)))
	return nil
}

func compileAttr(source string) (*vm.Program, error) {
	return expr.Compile(source, expr.Env(map[string]any{
		"index": 0,
		"attrs": map[string]any{},
	}))
}

// attrRefs extracts the sibling attribute names an expression reads through
// the attrs environment value, so reads of not-yet-resolved siblings surface
// as typed errors at evaluation time. Dynamic property access cannot be seen
// statically and evaluates to nil instead.
func attrRefs(source string) []string {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil
	}
	v := &attrRefVisitor{}
	ast.Walk(&tree.Node, v)
	return v.names
}

type attrRefVisitor struct {
	names []string
}

func (v *attrRefVisitor) Visit(node *ast.Node) {
	member, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}
	ident, ok := member.Node.(*ast.IdentifierNode)
	if !ok || ident.Value != "attrs" {
		return
	}
	if prop, ok := member.Property.(*ast.StringNode); ok {
		v.names = append(v.names, prop.Value)
	}
}

func exprGenerator(source string, program *vm.Program, deps []string) factory.Generator {
	return func(g *factory.Gen) (any, error) {
		for _, name := range deps {
			if _, err := g.Attr(name); err != nil {
				return nil, err
			}
		}
		env := map[string]any{
			"index": g.Index(),
			"attrs": map[string]any(g.Resolved()),
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("eval %q: %w", source, err)
		}
		return out, nil
	}
}
