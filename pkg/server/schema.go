package server

import (
	"github.com/go-openapi/inflect"

	"github.com/seedstore/seedstore/pkg/store"
)

var rules = inflect.NewDefaultRuleset()

// SchemaHandle resolves collection names to typed handles, the way a
// client library addresses resources by their plural route name.
type SchemaHandle struct {
	server *Server
}

// Collection resolves a collection by name. Both the singular type name
// and its plural form are accepted: "user" and "users" address the same
// collection. Unknown names return a NotFoundError.
func (h *SchemaHandle) Collection(name string) (*CollectionHandle, error) {
	typeName := name
	if !h.server.store.HasType(typeName) {
		typeName = rules.Singularize(name)
	}
	if !h.server.store.HasType(typeName) {
		return nil, &store.NotFoundError{Type: name}
	}
	return &CollectionHandle{server: h.server, typeName: typeName}, nil
}

// Collections lists the registered collections by their plural names.
func (h *SchemaHandle) Collections() []string {
	types := h.server.store.Types()
	plurals := make([]string, len(types))
	for i, t := range types {
		plurals[i] = rules.Pluralize(t)
	}
	return plurals
}

// CollectionHandle provides scoped access to a single record type.
type CollectionHandle struct {
	server   *Server
	typeName string
}

// TypeName returns the singular type name the handle is bound to.
func (c *CollectionHandle) TypeName() string { return c.typeName }

// All returns every record in insertion order.
func (c *CollectionHandle) All() ([]store.Record, error) {
	return c.server.store.All(c.typeName)
}

// Find returns the record with the given id.
func (c *CollectionHandle) Find(id string) (store.Record, error) {
	return c.server.store.Find(c.typeName, id)
}

// Where returns the records matching the predicate, in insertion order.
func (c *CollectionHandle) Where(pred func(store.Record) bool) ([]store.Record, error) {
	return c.server.store.Where(c.typeName, pred)
}

// Count returns the number of records in the collection.
func (c *CollectionHandle) Count() (int, error) {
	return c.server.store.Count(c.typeName)
}

// Insert adds a record directly, bypassing any factory.
func (c *CollectionHandle) Insert(attrs store.Attrs) (store.Record, error) {
	return c.server.store.Insert(c.typeName, attrs)
}

// Update merges attrs into an existing record.
func (c *CollectionHandle) Update(id string, attrs store.Attrs) (store.Record, error) {
	return c.server.store.Update(c.typeName, id, attrs)
}

// Remove deletes a record, detaching any records that reference it.
func (c *CollectionHandle) Remove(id string) error {
	return c.server.store.Remove(c.typeName, id)
}

// Create builds a record through the registered factory.
func (c *CollectionHandle) Create(args ...any) (store.Record, error) {
	return c.server.Create(c.typeName, args...)
}

// CreateList builds n records through the registered factory.
func (c *CollectionHandle) CreateList(n int, args ...any) ([]store.Record, error) {
	return c.server.CreateList(c.typeName, n, args...)
}
