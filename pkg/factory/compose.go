package factory

// compose merges the base definition with the named traits into one ordered
// attribute list and one ordered hook list. Attributes merge left to right
// with later traits winning per key; a key keeps the position of its first
// declaration. Hooks accumulate: base first, then traits in the order their
// names were supplied.
func (d *Definition) compose(traitNames []string) ([]attrDef, []Hook, error) {
	merged := make([]attrDef, len(d.attrs))
	copy(merged, d.attrs)

	var hooks []Hook
	if d.hook != nil {
		hooks = append(hooks, d.hook)
	}

	for _, name := range traitNames {
		tr, ok := d.traits[name]
		if !ok {
			return nil, nil, &UnknownTraitError{Type: d.typeName, Trait: name}
		}
		for _, ad := range tr.attrs {
			merged = setAttr(merged, ad)
		}
		if tr.hook != nil {
			hooks = append(hooks, tr.hook)
		}
	}

	return merged, hooks, nil
}
