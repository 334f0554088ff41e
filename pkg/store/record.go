package store

// Attrs is an attribute set: a mapping from attribute name to value.
type Attrs map[string]any

// Record is a snapshot of one persisted entity: a unique identifier plus
// its attributes. Records returned by the store are copies; mutating a
// returned Record never changes store state.
type Record struct {
	// ID is the unique identifier within the record's collection.
	ID string
	// Type is the declared type name the record belongs to.
	Type string
	// Attrs contains the record's attributes, foreign keys included.
	Attrs Attrs
}

// Ref is a typed reference to a record. It is accepted anywhere a Record is
// accepted as an association value, and is required for polymorphic
// associations when only an identifier is at hand.
type Ref struct {
	Type string
	ID   string
}

// Get returns the named attribute, or nil if absent.
func (r Record) Get(key string) any {
	return r.Attrs[key]
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	return Record{ID: r.ID, Type: r.Type, Attrs: cloneAttrs(r.Attrs)}
}

// cloneAttrs deep-copies an attribute set. Maps and slices are copied
// recursively; scalar values are copied by assignment.
func cloneAttrs(src Attrs) Attrs {
	if src == nil {
		return nil
	}
	dst := make(Attrs, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Attrs:
		return cloneAttrs(val)
	case map[string]any:
		return map[string]any(cloneAttrs(val))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
