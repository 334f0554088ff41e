package store

import (
	"sort"
	"sync"

	"github.com/seedstore/seedstore/internal/id"
)

// Store owns the typed collections of an isolated in-memory database
// instance, along with its per-type creation-index counters. Independent
// Store instances share nothing.
type Store struct {
	mu          sync.RWMutex
	types       map[string]*typeDef
	collections map[string]*collection
	indices     map[string]int
	observer    Observer
	newID       func() string
}

// Option configures a Store.
type Option func(*Store)

// WithShortIDs makes generated record identifiers 16-character hex strings
// instead of UUIDs, for fixtures where brevity matters. Explicit "id"
// attributes are honored either way.
func WithShortIDs() Option {
	return func(s *Store) {
		s.newID = id.Short
	}
}

// New creates an empty Store with no registered types.
func New(opts ...Option) *Store {
	s := &Store{
		types:       make(map[string]*typeDef),
		collections: make(map[string]*collection),
		indices:     make(map[string]int),
		observer:    &NoopObserver{},
		newID:       id.UUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetObserver installs an observer notified after every committed mutation.
// Passing nil restores the no-op observer.
func (s *Store) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o == nil {
		o = &NoopObserver{}
	}
	s.observer = o
}

// Types returns all registered type names in sorted order.
func (s *Store) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Insert persists a new record of the given type and returns a snapshot of
// it. Attribute values that are Records, Refs, or slices of them are
// translated to foreign keys and the inverse side is synchronized. An "id"
// attribute, when present, becomes the record identifier; otherwise a fresh
// UUID is assigned. Identifiers are never reused within a store's lifetime.
func (s *Store) Insert(typeName string, attrs Attrs) (Record, error) {
	s.mu.Lock()
	rec, err := s.insertLocked(typeName, attrs)
	s.mu.Unlock()

	if err == nil {
		s.observer.OnInsert(typeName, rec.ID)
	}
	return rec, err
}

func (s *Store) insertLocked(typeName string, attrs Attrs) (Record, error) {
	td, ok := s.types[typeName]
	if !ok {
		return Record{}, &NotFoundError{Type: typeName}
	}
	col := s.collections[typeName]

	work := copyForWrite(attrs)

	recID := s.newID()
	if raw, ok := work["id"]; ok {
		str, isStr := raw.(string)
		if !isStr || str == "" {
			return Record{}, &ValidationError{Type: typeName, Field: "id", Message: "identifier must be a non-empty string"}
		}
		recID = str
		delete(work, "id")
	}
	if col.get(recID) != nil {
		return Record{}, &ValidationError{Type: typeName, Field: "id", Message: "identifier already in use"}
	}

	links, err := s.translateAssociations(td, typeName, work)
	if err != nil {
		return Record{}, err
	}
	if err := td.validate(work); err != nil {
		return Record{}, err
	}

	rec := &record{id: recID, attrs: work}
	col.insert(rec)
	s.applyLinks(typeName, recID, nil, links)

	return col.snapshot(rec), nil
}

// Update merges attrs into an existing record, re-resolving any association
// keys present in attrs, and returns a snapshot of the updated record.
// Assigning nil to a singular association clears it; assigning a collection
// to a plural association replaces the membership.
func (s *Store) Update(typeName, recID string, attrs Attrs) (Record, error) {
	s.mu.Lock()
	rec, err := s.updateLocked(typeName, recID, attrs)
	s.mu.Unlock()

	if err == nil {
		s.observer.OnUpdate(typeName, recID)
	}
	return rec, err
}

func (s *Store) updateLocked(typeName, recID string, attrs Attrs) (Record, error) {
	td, ok := s.types[typeName]
	if !ok {
		return Record{}, &NotFoundError{Type: typeName}
	}
	col := s.collections[typeName]
	existing := col.get(recID)
	if existing == nil {
		return Record{}, &NotFoundError{Type: typeName, ID: recID}
	}

	work := copyForWrite(attrs)
	if raw, ok := work["id"]; ok {
		if str, isStr := raw.(string); !isStr || str != recID {
			return Record{}, &ValidationError{Type: typeName, Field: "id", Message: "identifier is immutable"}
		}
		delete(work, "id")
	}

	links, err := s.translateAssociations(td, typeName, work)
	if err != nil {
		return Record{}, err
	}

	// Snapshot the references being reassigned so the old inverse side can
	// be severed after commit.
	old := s.captureLinks(existing, links)

	merged := cloneAttrs(existing.attrs)
	for k, v := range work {
		merged[k] = v
	}
	if err := td.validate(merged); err != nil {
		return Record{}, err
	}

	existing.attrs = merged
	s.applyLinks(typeName, recID, old, links)

	return col.snapshot(existing), nil
}

// Remove deletes a record. Inbound references are cleaned up rather than
// left dangling: singular foreign keys pointing at the record are nulled
// and plural memberships are pruned. Dependent records are not deleted.
func (s *Store) Remove(typeName, recID string) error {
	s.mu.Lock()
	err := s.removeLocked(typeName, recID)
	s.mu.Unlock()

	if err == nil {
		s.observer.OnRemove(typeName, recID)
	}
	return err
}

func (s *Store) removeLocked(typeName, recID string) error {
	col, ok := s.collections[typeName]
	if !ok {
		return &NotFoundError{Type: typeName}
	}
	if col.get(recID) == nil {
		return &NotFoundError{Type: typeName, ID: recID}
	}

	col.remove(recID)
	s.severInboundReferences(typeName, recID)
	return nil
}

// Find returns a snapshot of one record by identifier.
func (s *Store) Find(typeName, recID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[typeName]
	if !ok {
		return Record{}, &NotFoundError{Type: typeName}
	}
	rec := col.get(recID)
	if rec == nil {
		return Record{}, &NotFoundError{Type: typeName, ID: recID}
	}
	return col.snapshot(rec), nil
}

// All returns snapshots of every record of a type in insertion order.
func (s *Store) All(typeName string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[typeName]
	if !ok {
		return nil, &NotFoundError{Type: typeName}
	}
	recs := col.all()
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = col.snapshot(rec)
	}
	return out, nil
}

// Where returns snapshots of the records matching the predicate, in
// insertion order. The predicate receives snapshots, never live state.
func (s *Store) Where(typeName string, pred func(Record) bool) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[typeName]
	if !ok {
		return nil, &NotFoundError{Type: typeName}
	}
	var out []Record
	for _, rec := range col.all() {
		snap := col.snapshot(rec)
		if pred(snap) {
			out = append(out, snap)
		}
	}
	return out, nil
}

// Count returns the number of records of a type.
func (s *Store) Count(typeName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[typeName]
	if !ok {
		return 0, &NotFoundError{Type: typeName}
	}
	return col.len(), nil
}

// NextIndex returns the creation index for a type and advances the counter.
// Indices are 0-based, strictly increasing for the lifetime of the store,
// and independent per type. Reset does not rewind them.
func (s *Store) NextIndex(typeName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.types[typeName]; !ok {
		return 0, &NotFoundError{Type: typeName}
	}
	i := s.indices[typeName]
	s.indices[typeName] = i + 1
	return i, nil
}

// Dump returns the full current contents of all collections as plain nested
// data, keyed by type name, with each record's attributes flattened beside
// its "id". Collections preserve insertion order.
func (s *Store) Dump() map[string][]Attrs {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Attrs, len(s.collections))
	for name, col := range s.collections {
		records := make([]Attrs, 0, col.len())
		for _, rec := range col.all() {
			attrs := cloneAttrs(rec.attrs)
			attrs["id"] = rec.id
			records = append(records, attrs)
		}
		out[name] = records
	}
	return out
}

// Reset removes all records from all collections. Registered types remain,
// and creation-index counters keep advancing from where they were so
// identifiers and indices are never reused.
func (s *Store) Reset() {
	s.mu.Lock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
		s.collections[name] = newCollection(name)
	}
	sort.Strings(names)
	s.mu.Unlock()

	s.observer.OnReset(names)
}

// copyForWrite copies an incoming attribute map so association translation
// can rewrite keys without mutating the caller's map, and so a caller that
// retains a nested slice or map cannot mutate store state after the write
// commits. Association values (Records, Refs, record slices) pass through
// verbatim; translation consumes them before anything is stored.
func copyForWrite(attrs Attrs) Attrs {
	work := make(Attrs, len(attrs))
	for k, v := range attrs {
		work[k] = cloneValue(v)
	}
	return work
}
