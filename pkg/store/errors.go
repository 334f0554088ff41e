package store

import "fmt"

// NotFoundError is returned when an operation targets a nonexistent type,
// collection, or record identifier.
type NotFoundError struct {
	Type string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("type %q record %q not found", e.Type, e.ID)
	}
	return fmt.Sprintf("type %q not found", e.Type)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	if e.ID != "" {
		return fmt.Sprintf("Check that record %q exists in collection %q, or list the collection to see available records.", e.ID, e.Type)
	}
	return fmt.Sprintf("Type %q is not registered. Register it with RegisterType before use.", e.Type)
}

// TypeMismatchError is returned when an association value references a
// record whose type does not match the association's declared target.
type TypeMismatchError struct {
	Type        string
	Association string
	Want        string
	Got         string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("association %q on type %q expects %q, got a record of type %q",
		e.Association, e.Type, e.Want, e.Got)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *TypeMismatchError) Hint() string {
	return fmt.Sprintf("Pass a %q record to %q, or declare the association Polymorphic() if it should accept multiple types.", e.Want, e.Association)
}

// DanglingReferenceError is returned when an association value points at a
// record that does not exist. Dangling references are never persisted.
type DanglingReferenceError struct {
	Type        string
	Association string
	TargetType  string
	TargetID    string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("association %q on type %q references nonexistent %s record %q",
		e.Association, e.Type, e.TargetType, e.TargetID)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *DanglingReferenceError) Hint() string {
	return fmt.Sprintf("Create the %s record before referencing it, or pass the record returned by the create call instead of a raw identifier.", e.TargetType)
}

// ValidationError is returned when input validation fails: an unknown
// attribute in strict mode, a JSON Schema violation, or a malformed
// association value.
type ValidationError struct {
	Type    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for type %q field %q: %s", e.Type, e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed for type %q: %s", e.Type, e.Message)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ValidationError) Hint() string {
	if e.Field != "" {
		return fmt.Sprintf("Check the value of attribute %q, or add it to the declared attributes of type %q.", e.Field, e.Type)
	}
	return "Check the attribute set against the type's declared schema."
}

// HintError is an interface for errors that provide resolution hints.
type HintError interface {
	error
	Hint() string
}
