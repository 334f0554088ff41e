package store

// collection holds the live records of one declared type. Insertion order
// is preserved for enumeration. Access is guarded by the owning Store's
// lock; a collection has no locking of its own.
type collection struct {
	typeName string
	items    map[string]*record
	order    []string
}

// record is the stored, mutable representation of an entity. Snapshots
// handed to callers are built with snapshot().
type record struct {
	id    string
	attrs Attrs
}

func newCollection(typeName string) *collection {
	return &collection{
		typeName: typeName,
		items:    make(map[string]*record),
	}
}

func (c *collection) get(id string) *record {
	return c.items[id]
}

func (c *collection) insert(rec *record) {
	c.items[rec.id] = rec
	c.order = append(c.order, rec.id)
}

func (c *collection) remove(id string) {
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// all returns the live records in insertion order.
func (c *collection) all() []*record {
	out := make([]*record, 0, len(c.order))
	for _, id := range c.order {
		if rec, ok := c.items[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func (c *collection) len() int {
	return len(c.items)
}

// snapshot builds an independently mutable copy of a stored record.
func (c *collection) snapshot(rec *record) Record {
	return Record{ID: rec.id, Type: c.typeName, Attrs: cloneAttrs(rec.attrs)}
}
