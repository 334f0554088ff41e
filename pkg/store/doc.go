// Package store provides the in-memory relational record store that backs
// the seedstore data-generation engine.
//
// The store simulates a backend persistence layer during development and
// testing. It maintains referential integrity across related records while
// callers perform arbitrary create/read/update/delete operations. It
// supports:
//
//   - Typed collections with stable, never-reused identifiers
//   - Declared belongs-to / has-many associations with maintained inverses
//   - Polymorphic belongs-to associations (type tag stored beside the key)
//   - Snapshot reads (returned records are copies, never live aliases)
//   - Optional strict schema mode (attribute allow-list or JSON Schema)
//   - Full-store dumps for assertions and debugging
//
// Core Types:
//
//   - Store: owns all collections and per-type creation-index counters
//   - Record: a snapshot of one persisted entity (id + attributes)
//   - Association: a declared relationship between two types
//
// Foreign keys live in ordinary attributes: a belongs-to association named
// "author" stores "authorId" (plus "authorType" when polymorphic); a
// has-many association named "posts" stores "postIds". Assigning a Record
// (or slice of Records) to an association attribute wires both sides.
//
// Thread Safety:
//
// A Store serializes all operations behind a sync.RWMutex. Independent Store
// instances share nothing and are safe to use from separate goroutines.
//
// Usage:
//
//	s := store.New()
//	s.RegisterType(store.TypeConfig{
//	    Name: "user",
//	    Associations: []*store.Association{
//	        store.HasMany("posts", "post").Inverse("author"),
//	    },
//	})
//	s.RegisterType(store.TypeConfig{
//	    Name: "post",
//	    Associations: []*store.Association{
//	        store.BelongsTo("author", "user").Inverse("posts"),
//	    },
//	})
//
//	alice, _ := s.Insert("user", store.Attrs{"name": "Alice"})
//	post, _ := s.Insert("post", store.Attrs{"title": "Hello", "author": alice})
//	// post.Attrs["authorId"] == alice.ID
//	// alice's "postIds" now contains post.ID
package store
