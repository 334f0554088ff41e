package store

import "github.com/go-openapi/inflect"

var rules = inflect.NewDefaultRuleset()

// Kind identifies the cardinality of an association.
type Kind string

const (
	// KindBelongsTo is a singular association: this record holds the
	// foreign key to one record of the target type.
	KindBelongsTo Kind = "belongsTo"
	// KindHasMany is a plural association: this record holds the
	// identifier list of the associated records.
	KindHasMany Kind = "hasMany"
)

// Association declares a relationship from one type to another. Build
// declarations with BelongsTo and HasMany, then attach them to a type via
// TypeConfig.Associations.
type Association struct {
	name        string
	kind        Kind
	target      string
	inverse     string
	polymorphic bool
}

// BelongsTo declares a singular association. The owning record stores the
// target's identifier under "<name>Id".
func BelongsTo(name, target string) *Association {
	return &Association{name: name, kind: KindBelongsTo, target: target}
}

// HasMany declares a plural association. The owning record stores the
// member identifiers under "<singular name>Ids".
func HasMany(name, target string) *Association {
	return &Association{name: name, kind: KindHasMany, target: target}
}

// Inverse names the association on the target type that mirrors this one.
// When omitted, the store picks the first association on the target type of
// opposite kind that points back at the owning type.
func (a *Association) Inverse(name string) *Association {
	a.inverse = name
	return a
}

// Polymorphic marks a belongs-to association as polymorphic: the target
// type is determined per record rather than statically, and the referenced
// type is persisted under "<name>Type" beside the foreign key.
func (a *Association) Polymorphic() *Association {
	a.polymorphic = true
	return a
}

// Name returns the association name.
func (a *Association) Name() string { return a.name }

// Kind returns the association cardinality.
func (a *Association) Kind() Kind { return a.kind }

// Target returns the declared target type. Empty for polymorphic
// associations, whose target varies per record.
func (a *Association) Target() string {
	if a.polymorphic {
		return ""
	}
	return a.target
}

// InverseName returns the explicitly declared inverse name, or "".
func (a *Association) InverseName() string { return a.inverse }

// IsPolymorphic reports whether the association is polymorphic.
func (a *Association) IsPolymorphic() bool { return a.polymorphic }

// ForeignKey returns the attribute holding the referenced identifier for a
// singular association, e.g. "authorId" for an association named "author".
func (a *Association) ForeignKey() string { return a.name + "Id" }

// TypeKey returns the attribute holding the referenced type for a
// polymorphic association, e.g. "commentableType".
func (a *Association) TypeKey() string { return a.name + "Type" }

// IDsKey returns the attribute holding the member identifier list for a
// plural association, e.g. "postIds" for an association named "posts".
func (a *Association) IDsKey() string { return rules.Singularize(a.name) + "Ids" }

// storageKeys returns every attribute name this association may occupy.
func (a *Association) storageKeys() []string {
	switch a.kind {
	case KindHasMany:
		return []string{a.IDsKey()}
	default:
		if a.polymorphic {
			return []string{a.ForeignKey(), a.TypeKey()}
		}
		return []string{a.ForeignKey()}
	}
}
