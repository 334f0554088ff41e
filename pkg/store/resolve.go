package store

import "sort"

// pendingLink is a validated association assignment waiting to be applied
// to the inverse side once the owning record is committed.
type pendingLink struct {
	assoc   *Association
	ref     *Ref  // singular target; nil clears the key
	members []Ref // plural membership (replace, not merge)
}

// oldLink captures the references an association held before reassignment.
type oldLink struct {
	ref       *Ref
	memberIDs []string
}

// translateAssociations rewrites high-level association values in work into
// foreign-key form, validating every reference. It returns the deferred
// inverse-side updates. Nothing is mutated on failure. Lock held.
func (s *Store) translateAssociations(td *typeDef, ownerType string, work Attrs) ([]pendingLink, error) {
	var links []pendingLink

	for _, a := range td.assocs {
		switch a.kind {
		case KindBelongsTo:
			value, supplied := work[a.name]
			if !supplied {
				// A raw foreign key is accepted in place of the association
				// name so callers can pass identifiers directly.
				raw, rawOK := work[a.ForeignKey()]
				if !rawOK {
					continue
				}
				value = raw
				if a.polymorphic && raw != nil {
					rawID, isStr := raw.(string)
					typeTag, _ := work[a.TypeKey()].(string)
					if !isStr || typeTag == "" {
						return nil, &ValidationError{
							Type:    ownerType,
							Field:   a.ForeignKey(),
							Message: "polymorphic association requires a type tag beside the identifier",
						}
					}
					value = Ref{Type: typeTag, ID: rawID}
				}
			}

			ref, err := s.resolveSingularRef(ownerType, a, value)
			if err != nil {
				return nil, err
			}

			delete(work, a.name)
			if ref == nil {
				work[a.ForeignKey()] = nil
				if a.polymorphic {
					work[a.TypeKey()] = nil
				}
			} else {
				work[a.ForeignKey()] = ref.ID
				if a.polymorphic {
					work[a.TypeKey()] = ref.Type
				}
			}
			links = append(links, pendingLink{assoc: a, ref: ref})

		case KindHasMany:
			value, supplied := work[a.name]
			if !supplied {
				raw, rawOK := work[a.IDsKey()]
				if !rawOK {
					continue
				}
				value = raw
			}

			members, ids, err := s.resolvePluralRefs(ownerType, a, value)
			if err != nil {
				return nil, err
			}

			delete(work, a.name)
			work[a.IDsKey()] = ids
			links = append(links, pendingLink{assoc: a, members: members})
		}
	}

	return links, nil
}

// resolveSingularRef normalizes a singular association value into a typed
// reference and validates that the target exists.
func (s *Store) resolveSingularRef(ownerType string, a *Association, value any) (*Ref, error) {
	var ref Ref

	switch v := value.(type) {
	case nil:
		return nil, nil
	case Record:
		ref = Ref{Type: v.Type, ID: v.ID}
	case *Record:
		if v == nil {
			return nil, nil
		}
		ref = Ref{Type: v.Type, ID: v.ID}
	case Ref:
		ref = v
	case *Ref:
		if v == nil {
			return nil, nil
		}
		ref = *v
	case string:
		if a.polymorphic {
			return nil, &ValidationError{
				Type:    ownerType,
				Field:   a.name,
				Message: "polymorphic association requires a typed reference, not a bare identifier",
			}
		}
		ref = Ref{Type: a.target, ID: v}
	default:
		return nil, &ValidationError{
			Type:    ownerType,
			Field:   a.name,
			Message: "unsupported association value",
		}
	}

	if ref.Type == "" {
		if a.polymorphic {
			return nil, &ValidationError{
				Type:    ownerType,
				Field:   a.name,
				Message: "polymorphic association requires a typed reference",
			}
		}
		ref.Type = a.target
	}
	if !a.polymorphic && ref.Type != a.target {
		return nil, &TypeMismatchError{
			Type:        ownerType,
			Association: a.name,
			Want:        a.target,
			Got:         ref.Type,
		}
	}

	col := s.collections[ref.Type]
	if col == nil || col.get(ref.ID) == nil {
		return nil, &DanglingReferenceError{
			Type:        ownerType,
			Association: a.name,
			TargetType:  ref.Type,
			TargetID:    ref.ID,
		}
	}

	return &ref, nil
}

// resolvePluralRefs normalizes a plural association value into its member
// references, validating each one.
func (s *Store) resolvePluralRefs(ownerType string, a *Association, value any) ([]Ref, []string, error) {
	var elems []any

	switch v := value.(type) {
	case nil:
	case []Record:
		for _, r := range v {
			elems = append(elems, r)
		}
	case []*Record:
		for _, r := range v {
			elems = append(elems, r)
		}
	case []Ref:
		for _, r := range v {
			elems = append(elems, r)
		}
	case []string:
		for _, s := range v {
			elems = append(elems, s)
		}
	case []any:
		elems = v
	default:
		return nil, nil, &ValidationError{
			Type:    ownerType,
			Field:   a.name,
			Message: "plural association value must be a collection of records or identifiers",
		}
	}

	members := make([]Ref, 0, len(elems))
	ids := make([]string, 0, len(elems))
	seen := make(map[string]bool, len(elems))
	for _, elem := range elems {
		ref, err := s.resolveSingularRef(ownerType, a, elem)
		if err != nil {
			return nil, nil, err
		}
		if ref == nil || seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		members = append(members, *ref)
		ids = append(ids, ref.ID)
	}

	return members, ids, nil
}

// captureLinks records the references currently held by every association
// about to be reassigned, paired index-for-index with links.
func (s *Store) captureLinks(existing *record, links []pendingLink) []oldLink {
	old := make([]oldLink, len(links))
	for i, link := range links {
		a := link.assoc
		switch a.kind {
		case KindBelongsTo:
			fk, _ := existing.attrs[a.ForeignKey()].(string)
			if fk == "" {
				continue
			}
			targetType := a.target
			if a.polymorphic {
				targetType, _ = existing.attrs[a.TypeKey()].(string)
			}
			if targetType != "" {
				old[i].ref = &Ref{Type: targetType, ID: fk}
			}
		case KindHasMany:
			old[i].memberIDs = idListFrom(existing.attrs, a.IDsKey())
		}
	}
	return old
}

// applyLinks synchronizes the inverse side of every association assignment.
// All references were validated during translation, so this phase cannot
// fail. Lock held; old is nil on insert.
func (s *Store) applyLinks(ownerType, ownerID string, old []oldLink, links []pendingLink) {
	for i, link := range links {
		a := link.assoc

		var prev oldLink
		if old != nil {
			prev = old[i]
		}

		switch a.kind {
		case KindBelongsTo:
			same := prev.ref != nil && link.ref != nil && *prev.ref == *link.ref
			if prev.ref != nil && !same {
				s.severSingularInverse(ownerType, ownerID, a, *prev.ref)
			}
			if link.ref != nil && !same {
				s.bindSingularInverse(ownerType, ownerID, a, *link.ref)
			}

		case KindHasMany:
			inv := s.findInverse(ownerType, a, a.target)
			newSet := make(map[string]bool, len(link.members))
			for _, m := range link.members {
				newSet[m.ID] = true
			}

			for _, oldID := range prev.memberIDs {
				if newSet[oldID] {
					continue
				}
				s.severMembership(ownerID, a, inv, oldID)
			}

			oldSet := make(map[string]bool, len(prev.memberIDs))
			for _, oldID := range prev.memberIDs {
				oldSet[oldID] = true
			}
			for _, m := range link.members {
				if oldSet[m.ID] {
					continue
				}
				s.bindMembership(ownerType, ownerID, a, inv, m)
			}
		}
	}
}

// bindSingularInverse registers ownerID on the inverse side of a singular
// association pointing at ref.
func (s *Store) bindSingularInverse(ownerType, ownerID string, a *Association, ref Ref) {
	inv := s.findInverse(ownerType, a, ref.Type)
	if inv == nil {
		return
	}
	col := s.collections[ref.Type]
	if col == nil {
		return
	}
	target := col.get(ref.ID)
	if target == nil {
		return
	}

	if inv.kind == KindHasMany {
		target.attrs[inv.IDsKey()] = appendUnique(idListFrom(target.attrs, inv.IDsKey()), ownerID)
		return
	}

	// One-to-one: the record previously on this side loses its claim.
	if prev, _ := target.attrs[inv.ForeignKey()].(string); prev != "" && prev != ownerID {
		prevType := ownerType
		if inv.polymorphic {
			prevType, _ = target.attrs[inv.TypeKey()].(string)
		}
		if prevRec := s.lookup(prevType, prev); prevRec != nil {
			prevRec.attrs[a.ForeignKey()] = nil
			if a.polymorphic {
				prevRec.attrs[a.TypeKey()] = nil
			}
		}
	}
	target.attrs[inv.ForeignKey()] = ownerID
	if inv.polymorphic {
		target.attrs[inv.TypeKey()] = ownerType
	}
}

// severSingularInverse removes ownerID from the inverse side of a singular
// association that used to point at ref.
func (s *Store) severSingularInverse(ownerType, ownerID string, a *Association, ref Ref) {
	inv := s.findInverse(ownerType, a, ref.Type)
	if inv == nil {
		return
	}
	target := s.lookup(ref.Type, ref.ID)
	if target == nil {
		return
	}

	if inv.kind == KindHasMany {
		target.attrs[inv.IDsKey()] = removeID(idListFrom(target.attrs, inv.IDsKey()), ownerID)
		return
	}
	if fk, _ := target.attrs[inv.ForeignKey()].(string); fk == ownerID {
		target.attrs[inv.ForeignKey()] = nil
		if inv.polymorphic {
			target.attrs[inv.TypeKey()] = nil
		}
	}
}

// bindMembership points a member's singular inverse at the owner, stealing
// the member from its previous owner's membership list if necessary.
func (s *Store) bindMembership(ownerType, ownerID string, a *Association, inv *Association, member Ref) {
	rec := s.lookup(member.Type, member.ID)
	if rec == nil || inv == nil {
		return
	}

	if prev, _ := rec.attrs[inv.ForeignKey()].(string); prev != "" && prev != ownerID {
		prevType := inv.target
		if inv.polymorphic {
			prevType, _ = rec.attrs[inv.TypeKey()].(string)
		}
		if prevOwner := s.lookup(prevType, prev); prevOwner != nil {
			if back := s.findInverse(member.Type, inv, prevType); back != nil && back.kind == KindHasMany {
				prevOwner.attrs[back.IDsKey()] = removeID(idListFrom(prevOwner.attrs, back.IDsKey()), member.ID)
			}
		}
	}

	rec.attrs[inv.ForeignKey()] = ownerID
	if inv.polymorphic {
		rec.attrs[inv.TypeKey()] = ownerType
	}
}

// severMembership clears a former member's singular inverse.
func (s *Store) severMembership(ownerID string, a *Association, inv *Association, memberID string) {
	if inv == nil {
		return
	}
	rec := s.lookup(a.target, memberID)
	if rec == nil {
		return
	}
	if fk, _ := rec.attrs[inv.ForeignKey()].(string); fk == ownerID {
		rec.attrs[inv.ForeignKey()] = nil
		if inv.polymorphic {
			rec.attrs[inv.TypeKey()] = nil
		}
	}
}

// severInboundReferences walks every collection and removes references to a
// deleted record: foreign keys are nulled, memberships pruned. Types are
// visited in sorted order for determinism.
func (s *Store) severInboundReferences(typeName, recID string) {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		td := s.types[name]
		col := s.collections[name]
		for _, a := range td.assocs {
			switch a.kind {
			case KindBelongsTo:
				for _, rec := range col.all() {
					fk, _ := rec.attrs[a.ForeignKey()].(string)
					if fk != recID {
						continue
					}
					if a.polymorphic {
						if tag, _ := rec.attrs[a.TypeKey()].(string); tag != typeName {
							continue
						}
						rec.attrs[a.TypeKey()] = nil
					} else if a.target != typeName {
						continue
					}
					rec.attrs[a.ForeignKey()] = nil
				}
			case KindHasMany:
				if a.target != typeName {
					continue
				}
				for _, rec := range col.all() {
					if ids := idListFrom(rec.attrs, a.IDsKey()); len(ids) > 0 {
						rec.attrs[a.IDsKey()] = removeID(ids, recID)
					}
				}
			}
		}
	}
}

// lookup fetches a live record by type and id, or nil.
func (s *Store) lookup(typeName, recID string) *record {
	col := s.collections[typeName]
	if col == nil {
		return nil
	}
	return col.get(recID)
}

// idListFrom reads an identifier list attribute, tolerating both []string
// and []any representations.
func idListFrom(attrs Attrs, key string) []string {
	switch v := attrs[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func appendUnique(ids []string, recID string) []string {
	for _, existing := range ids {
		if existing == recID {
			return ids
		}
	}
	return append(ids, recID)
}

func removeID(ids []string, recID string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != recID {
			out = append(out, existing)
		}
	}
	return out
}
