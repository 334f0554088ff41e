// Package factory provides the declarative data-generation engine layered
// on the record store: factories, traits, dependent attributes, and
// post-creation hooks.
//
// A factory is a recipe for generating records of one type. Attributes are
// either constants or generator functions of the per-type creation index;
// generators may read sibling attributes that were declared earlier,
// letting later attributes depend on earlier ones. Traits are named partial
// factories applied only when requested. Post-creation hooks run after the
// record is persisted and may create further related records through the
// handle they receive.
//
//	users := factory.New("user").
//	    Set("role", "member").
//	    Gen("name", func(g *factory.Gen) (any, error) {
//	        return fmt.Sprintf("user %d", g.Index()), nil
//	    }).
//	    Trait("admin", factory.NewTrait().Set("role", "admin"))
//
//	b := factory.NewBuilder(s)
//	b.Register(users)
//	admin, err := b.Create("user", "admin", store.Attrs{"name": "root"})
//
// Merge order on create: base attributes first, then each named trait left
// to right (later traits win per key), then caller overrides (always win).
// Hooks never replace one another: the base hook runs first, then trait
// hooks in the order the trait names were passed.
//
// The Assoc helper declares that an attribute should be filled with a newly
// created record of the associated type unless the caller supplies one:
//
//	factory.New("post").Set("author", factory.Assoc())
//
// Hook-driven creation re-enters the builder through an explicit depth
// guard; a factory whose hooks transitively recreate their own type without
// bound fails with a RecursionLimitError instead of exhausting the stack.
//
// A failing step aborts the creation call immediately and no half-resolved
// record becomes visible, but records already fully inserted by earlier
// steps of the same call (synthesized associations, prior hook creations)
// are not rolled back.
package factory
