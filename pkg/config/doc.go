// Package config provides declarative YAML configuration for the seedstore
// data engine: type declarations, factory definitions with
// expression-valued attributes, and seed runs.
//
// A configuration document has three sections:
//
//	types:
//	  - name: user
//	    hasMany:
//	      - {name: posts, target: post, inverse: author}
//	  - name: post
//	    belongsTo:
//	      - {name: author, target: user, inverse: posts}
//	factories:
//	  user:
//	    attrs:
//	      - {name: role, value: member}
//	      - {name: name, expr: '"user " + string(index)'}
//	    traits:
//	      admin:
//	        attrs:
//	          - {name: role, value: admin}
//	seeds:
//	  - {type: user, count: 3, traits: [admin]}
//
// Attribute expressions are compiled once with expr-lang against the
// environment {index, attrs}: index is the per-type creation index and
// attrs holds the attributes resolved so far for the in-progress record,
// so expressions can depend on earlier-declared attributes
// (e.g. 'attrs.name + "@example.test"'). Reading a sibling that has not
// been resolved yet fails with an UnresolvedDependencyError, the same
// contract code generators get from Gen.Attr.
//
// Post-creation hooks are code, not configuration: register them on the
// built factory definitions after Build.
package config
