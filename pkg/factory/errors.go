package factory

import "fmt"

// UnknownTraitError is returned when a create call names a trait the
// factory does not declare.
type UnknownTraitError struct {
	Type  string
	Trait string
}

func (e *UnknownTraitError) Error() string {
	return fmt.Sprintf("factory %q has no trait %q", e.Type, e.Trait)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *UnknownTraitError) Hint() string {
	return fmt.Sprintf("Declare the trait with Trait(%q, ...) on the %q factory, or check the spelling of the trait name.", e.Trait, e.Type)
}

// UnresolvedDependencyError is returned when a generator reads a sibling
// attribute that has not been resolved yet. Resolution follows declaration
// order; there is no implicit reordering.
type UnresolvedDependencyError struct {
	Type       string
	Attr       string
	Dependency string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("factory %q attribute %q depends on %q, which is not resolved yet", e.Type, e.Attr, e.Dependency)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *UnresolvedDependencyError) Hint() string {
	return fmt.Sprintf("Declare %q before %q on the %q factory; attributes resolve strictly in declaration order.", e.Dependency, e.Attr, e.Type)
}

// UnsupportedAssociationError is returned when the Assoc helper is used on
// an attribute it cannot serve: an undeclared association, a plural
// association, or a polymorphic one.
type UnsupportedAssociationError struct {
	Type   string
	Attr   string
	Reason string
}

func (e *UnsupportedAssociationError) Error() string {
	return fmt.Sprintf("cannot synthesize association %q on type %q: %s", e.Attr, e.Type, e.Reason)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *UnsupportedAssociationError) Hint() string {
	return "Create the related records in an AfterCreate hook instead; the Assoc helper only serves non-polymorphic singular associations."
}

// RecursionLimitError is returned when hook-driven creation nests deeper
// than the builder's configured limit, which usually means a factory's
// hooks transitively recreate their own type.
type RecursionLimitError struct {
	Type  string
	Limit int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("creation of %q exceeded the recursion depth limit of %d", e.Type, e.Limit)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *RecursionLimitError) Hint() string {
	return fmt.Sprintf("Check the factory hooks for a creation cycle involving %q, or raise the limit with WithMaxDepth.", e.Type)
}
