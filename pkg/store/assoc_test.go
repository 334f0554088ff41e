package store

import (
	"errors"
	"testing"
)

// blogStore registers user/post/comment with the usual relationships.
func blogStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	configs := []TypeConfig{
		{
			Name: "user",
			Associations: []*Association{
				HasMany("posts", "post").Inverse("author"),
			},
		},
		{
			Name: "post",
			Associations: []*Association{
				BelongsTo("author", "user").Inverse("posts"),
				HasMany("comments", "comment").Inverse("post"),
			},
		},
		{
			Name: "comment",
			Associations: []*Association{
				BelongsTo("post", "post").Inverse("comments"),
			},
		},
	}
	for _, cfg := range configs {
		if err := s.RegisterType(cfg); err != nil {
			t.Fatalf("RegisterType(%s) failed: %v", cfg.Name, err)
		}
	}
	return s
}

func postIDs(t *testing.T, s *Store, userID string) []string {
	t.Helper()
	user, err := s.Find("user", userID)
	if err != nil {
		t.Fatalf("Find(user) failed: %v", err)
	}
	return idListFrom(user.Attrs, "postIds")
}

// =============================================================================
// Singular (belongs-to) Tests
// =============================================================================

func TestBelongsTo_RecordValue(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})

	post, err := s.Insert("post", Attrs{"title": "Hello", "author": alice})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if post.Attrs["authorId"] != alice.ID {
		t.Errorf("authorId = %v, want %v", post.Attrs["authorId"], alice.ID)
	}
	if _, ok := post.Attrs["author"]; ok {
		t.Error("association name should not be persisted as an attribute")
	}

	// Inverse plural membership maintained.
	ids := postIDs(t, s, alice.ID)
	if len(ids) != 1 || ids[0] != post.ID {
		t.Errorf("postIds = %v, want [%s]", ids, post.ID)
	}
}

func TestBelongsTo_RawID(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})

	post, err := s.Insert("post", Attrs{"authorId": alice.ID})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if post.Attrs["authorId"] != alice.ID {
		t.Errorf("authorId = %v, want %v", post.Attrs["authorId"], alice.ID)
	}
	if ids := postIDs(t, s, alice.ID); len(ids) != 1 {
		t.Errorf("postIds = %v, want one member", ids)
	}
}

func TestBelongsTo_Reassign(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	bob, _ := s.Insert("user", Attrs{"name": "Bob"})
	post, _ := s.Insert("post", Attrs{"author": alice})

	if _, err := s.Update("post", post.ID, Attrs{"author": bob}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if ids := postIDs(t, s, alice.ID); len(ids) != 0 {
		t.Errorf("alice.postIds = %v, want empty after reassignment", ids)
	}
	if ids := postIDs(t, s, bob.ID); len(ids) != 1 || ids[0] != post.ID {
		t.Errorf("bob.postIds = %v, want [%s]", ids, post.ID)
	}
}

func TestBelongsTo_ClearWithNil(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	post, _ := s.Insert("post", Attrs{"author": alice})

	updated, err := s.Update("post", post.ID, Attrs{"author": nil})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Attrs["authorId"] != nil {
		t.Errorf("authorId = %v, want nil", updated.Attrs["authorId"])
	}
	if ids := postIDs(t, s, alice.ID); len(ids) != 0 {
		t.Errorf("postIds = %v, want empty", ids)
	}
}

func TestBelongsTo_TypeMismatch(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	stray, _ := s.Insert("comment", Attrs{"body": "hi"})
	_ = alice

	_, err := s.Insert("post", Attrs{"author": stray})
	var tme *TypeMismatchError
	if !errors.As(err, &tme) {
		t.Fatalf("error = %v, want *TypeMismatchError", err)
	}
	if tme.Want != "user" || tme.Got != "comment" {
		t.Errorf("mismatch = want %q got %q", tme.Want, tme.Got)
	}
}

func TestBelongsTo_DanglingReference(t *testing.T) {
	s := blogStore(t)

	_, err := s.Insert("post", Attrs{"authorId": "nope"})
	var dre *DanglingReferenceError
	if !errors.As(err, &dre) {
		t.Fatalf("error = %v, want *DanglingReferenceError", err)
	}
	if dre.TargetID != "nope" {
		t.Errorf("TargetID = %q, want nope", dre.TargetID)
	}

	// Nothing was persisted by the failed insert.
	if count, _ := s.Count("post"); count != 0 {
		t.Errorf("Count(post) = %d, want 0 after failed insert", count)
	}
}

// =============================================================================
// Plural (has-many) Tests
// =============================================================================

func TestHasMany_AssignMembers(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	p1, _ := s.Insert("post", Attrs{"title": "one"})
	p2, _ := s.Insert("post", Attrs{"title": "two"})

	updated, err := s.Update("user", alice.ID, Attrs{"posts": []Record{p1, p2}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	ids := idListFrom(updated.Attrs, "postIds")
	if len(ids) != 2 {
		t.Fatalf("postIds = %v, want 2 members", ids)
	}

	// Each member's singular side points back.
	for _, pid := range []string{p1.ID, p2.ID} {
		post, _ := s.Find("post", pid)
		if post.Attrs["authorId"] != alice.ID {
			t.Errorf("post %s authorId = %v, want %v", pid, post.Attrs["authorId"], alice.ID)
		}
	}
}

func TestHasMany_ReplaceNotMerge(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	p1, _ := s.Insert("post", Attrs{"author": alice})
	p2, _ := s.Insert("post", Attrs{"title": "two"})

	if _, err := s.Update("user", alice.ID, Attrs{"posts": []Record{p2}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	ids := postIDs(t, s, alice.ID)
	if len(ids) != 1 || ids[0] != p2.ID {
		t.Fatalf("postIds = %v, want exactly [%s]", ids, p2.ID)
	}

	// The displaced member's foreign key was nulled, not left dangling.
	old, _ := s.Find("post", p1.ID)
	if old.Attrs["authorId"] != nil {
		t.Errorf("displaced post authorId = %v, want nil", old.Attrs["authorId"])
	}
}

func TestHasMany_StealsFromPreviousOwner(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	bob, _ := s.Insert("user", Attrs{"name": "Bob"})
	post, _ := s.Insert("post", Attrs{"author": alice})

	if _, err := s.Update("user", bob.ID, Attrs{"posts": []Record{post}}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if ids := postIDs(t, s, alice.ID); len(ids) != 0 {
		t.Errorf("alice.postIds = %v, want empty", ids)
	}
	if ids := postIDs(t, s, bob.ID); len(ids) != 1 || ids[0] != post.ID {
		t.Errorf("bob.postIds = %v, want [%s]", ids, post.ID)
	}
	got, _ := s.Find("post", post.ID)
	if got.Attrs["authorId"] != bob.ID {
		t.Errorf("authorId = %v, want %v", got.Attrs["authorId"], bob.ID)
	}
}

func TestHasMany_MemberTypeMismatch(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	comment, _ := s.Insert("comment", Attrs{"body": "hi"})

	_, err := s.Update("user", alice.ID, Attrs{"posts": []Record{comment}})
	var tme *TypeMismatchError
	if !errors.As(err, &tme) {
		t.Fatalf("error = %v, want *TypeMismatchError", err)
	}
}

// =============================================================================
// Deletion Policy Tests
// =============================================================================

func TestRemove_NullsInboundForeignKeys(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	post, _ := s.Insert("post", Attrs{"author": alice})

	if err := s.Remove("user", alice.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	got, err := s.Find("post", post.ID)
	if err != nil {
		t.Fatalf("dependent record should survive deletion: %v", err)
	}
	if got.Attrs["authorId"] != nil {
		t.Errorf("authorId = %v, want nil after owner deletion", got.Attrs["authorId"])
	}
}

func TestRemove_PrunesMemberships(t *testing.T) {
	s := blogStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	post, _ := s.Insert("post", Attrs{"author": alice})

	if err := s.Remove("post", post.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ids := postIDs(t, s, alice.ID); len(ids) != 0 {
		t.Errorf("postIds = %v, want empty after member deletion", ids)
	}
}

// =============================================================================
// One-to-One Tests
// =============================================================================

// oneToOneStore registers user/passport as mutual singular inverses.
func oneToOneStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	configs := []TypeConfig{
		{
			Name: "user",
			Associations: []*Association{
				BelongsTo("passport", "passport").Inverse("owner"),
			},
		},
		{
			Name: "passport",
			Associations: []*Association{
				BelongsTo("owner", "user").Inverse("passport"),
			},
		},
	}
	for _, cfg := range configs {
		if err := s.RegisterType(cfg); err != nil {
			t.Fatalf("RegisterType(%s) failed: %v", cfg.Name, err)
		}
	}
	return s
}

func TestOneToOne_BindSyncsBothSides(t *testing.T) {
	s := oneToOneStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})

	passport, err := s.Insert("passport", Attrs{"number": "P1", "owner": alice})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if passport.Attrs["ownerId"] != alice.ID {
		t.Errorf("ownerId = %v, want %v", passport.Attrs["ownerId"], alice.ID)
	}

	got, _ := s.Find("user", alice.ID)
	if got.Attrs["passportId"] != passport.ID {
		t.Errorf("passportId = %v, want %v", got.Attrs["passportId"], passport.ID)
	}
}

func TestOneToOne_StealsClaim(t *testing.T) {
	s := oneToOneStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	p1, _ := s.Insert("passport", Attrs{"number": "P1", "owner": alice})

	p2, err := s.Insert("passport", Attrs{"number": "P2", "owner": alice})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// The user points at the newcomer, and the displaced passport's
	// foreign key is nulled rather than left claiming the user.
	got, _ := s.Find("user", alice.ID)
	if got.Attrs["passportId"] != p2.ID {
		t.Errorf("passportId = %v, want %v", got.Attrs["passportId"], p2.ID)
	}
	displaced, _ := s.Find("passport", p1.ID)
	if displaced.Attrs["ownerId"] != nil {
		t.Errorf("displaced ownerId = %v, want nil", displaced.Attrs["ownerId"])
	}
}

func TestOneToOne_ClearWithNil(t *testing.T) {
	s := oneToOneStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	passport, _ := s.Insert("passport", Attrs{"owner": alice})

	if _, err := s.Update("passport", passport.ID, Attrs{"owner": nil}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := s.Find("user", alice.ID)
	if got.Attrs["passportId"] != nil {
		t.Errorf("passportId = %v, want nil after clearing the other side", got.Attrs["passportId"])
	}
}

func TestOneToOne_RemoveNullsSurvivor(t *testing.T) {
	s := oneToOneStore(t)
	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	passport, _ := s.Insert("passport", Attrs{"owner": alice})

	if err := s.Remove("user", alice.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	got, _ := s.Find("passport", passport.ID)
	if got.Attrs["ownerId"] != nil {
		t.Errorf("ownerId = %v, want nil after owner deletion", got.Attrs["ownerId"])
	}

	// And in the other direction.
	bob, _ := s.Insert("user", Attrs{"name": "Bob"})
	p2, _ := s.Insert("passport", Attrs{"owner": bob})
	if err := s.Remove("passport", p2.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	gotBob, _ := s.Find("user", bob.ID)
	if gotBob.Attrs["passportId"] != nil {
		t.Errorf("passportId = %v, want nil after passport deletion", gotBob.Attrs["passportId"])
	}
}

// =============================================================================
// Polymorphic Tests
// =============================================================================

func polymorphicStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	configs := []TypeConfig{
		{
			Name: "post",
			Associations: []*Association{
				HasMany("reactions", "reaction").Inverse("subject"),
			},
		},
		{
			Name: "photo",
			Associations: []*Association{
				HasMany("reactions", "reaction").Inverse("subject"),
			},
		},
		{
			Name: "reaction",
			Associations: []*Association{
				BelongsTo("subject", "").Polymorphic().Inverse("reactions"),
			},
		},
	}
	for _, cfg := range configs {
		if err := s.RegisterType(cfg); err != nil {
			t.Fatalf("RegisterType(%s) failed: %v", cfg.Name, err)
		}
	}
	return s
}

func TestPolymorphic_StoresTypeTag(t *testing.T) {
	s := polymorphicStore(t)
	post, _ := s.Insert("post", Attrs{"title": "Hello"})
	photo, _ := s.Insert("photo", Attrs{"url": "x.jpg"})

	r1, err := s.Insert("reaction", Attrs{"subject": post, "kind": "like"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if r1.Attrs["subjectId"] != post.ID || r1.Attrs["subjectType"] != "post" {
		t.Errorf("stored reference = %v/%v, want %v/post", r1.Attrs["subjectId"], r1.Attrs["subjectType"], post.ID)
	}

	r2, _ := s.Insert("reaction", Attrs{"subject": photo})
	if r2.Attrs["subjectType"] != "photo" {
		t.Errorf("subjectType = %v, want photo", r2.Attrs["subjectType"])
	}

	// Inverse memberships land on the right collections.
	gotPost, _ := s.Find("post", post.ID)
	if ids := idListFrom(gotPost.Attrs, "reactionIds"); len(ids) != 1 || ids[0] != r1.ID {
		t.Errorf("post.reactionIds = %v, want [%s]", ids, r1.ID)
	}
	gotPhoto, _ := s.Find("photo", photo.ID)
	if ids := idListFrom(gotPhoto.Attrs, "reactionIds"); len(ids) != 1 || ids[0] != r2.ID {
		t.Errorf("photo.reactionIds = %v, want [%s]", ids, r2.ID)
	}
}

func TestPolymorphic_RejectsBareIdentifier(t *testing.T) {
	s := polymorphicStore(t)
	post, _ := s.Insert("post", Attrs{"title": "Hello"})

	_, err := s.Insert("reaction", Attrs{"subject": post.ID})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError (id alone cannot resolve a polymorphic lookup)", err)
	}

	// A typed Ref works.
	if _, err := s.Insert("reaction", Attrs{"subject": Ref{Type: "post", ID: post.ID}}); err != nil {
		t.Errorf("typed reference rejected: %v", err)
	}
}

func TestPolymorphic_DeleteNullsTaggedReference(t *testing.T) {
	s := polymorphicStore(t)
	post, _ := s.Insert("post", Attrs{"title": "Hello"})
	reaction, _ := s.Insert("reaction", Attrs{"subject": post})

	if err := s.Remove("post", post.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	got, _ := s.Find("reaction", reaction.ID)
	if got.Attrs["subjectId"] != nil || got.Attrs["subjectType"] != nil {
		t.Errorf("reference = %v/%v, want nil/nil", got.Attrs["subjectId"], got.Attrs["subjectType"])
	}
}

// =============================================================================
// Referential Integrity Property
// =============================================================================

// After an arbitrary mix of operations, every singular foreign key resolves
// or is null, and plural memberships exactly mirror the singular side.
func TestIntegrityAfterMixedOperations(t *testing.T) {
	s := blogStore(t)

	alice, _ := s.Insert("user", Attrs{"name": "Alice"})
	bob, _ := s.Insert("user", Attrs{"name": "Bob"})
	p1, _ := s.Insert("post", Attrs{"author": alice})
	p2, _ := s.Insert("post", Attrs{"author": alice})
	p3, _ := s.Insert("post", Attrs{"author": bob})

	_, _ = s.Update("post", p2.ID, Attrs{"author": bob})
	_ = s.Remove("post", p3.ID)
	_ = s.Remove("user", alice.ID)
	_ = p1

	users, _ := s.All("user")
	posts, _ := s.All("post")

	for _, post := range posts {
		fk, _ := post.Attrs["authorId"].(string)
		if fk == "" {
			continue
		}
		if _, err := s.Find("user", fk); err != nil {
			t.Errorf("post %s has dangling authorId %s", post.ID, fk)
		}
	}

	for _, user := range users {
		for _, pid := range idListFrom(user.Attrs, "postIds") {
			post, err := s.Find("post", pid)
			if err != nil {
				t.Errorf("user %s lists nonexistent post %s", user.ID, pid)
				continue
			}
			if post.Attrs["authorId"] != user.ID {
				t.Errorf("membership not mirrored: post %s authorId = %v, want %s", pid, post.Attrs["authorId"], user.ID)
			}
		}
	}

	for _, post := range posts {
		fk, _ := post.Attrs["authorId"].(string)
		if fk == "" {
			continue
		}
		user, _ := s.Find("user", fk)
		found := false
		for _, pid := range idListFrom(user.Attrs, "postIds") {
			if pid == post.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("post %s not present in its author's membership list", post.ID)
		}
	}
}
