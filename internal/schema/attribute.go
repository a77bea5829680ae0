package schema

import "github.com/CavHack/EinsteinDB/internal/datom"

// Unique is an attribute's uniqueness constraint.
type Unique int

const (
	// UniqueNone places no uniqueness constraint on the attribute.
	UniqueNone Unique = iota
	// UniqueValue constrains each value to at most one entity.
	UniqueValue
	// UniqueIdentity is UniqueValue plus upsert behavior: asserting a
	// tempid with an existing (attribute, value) resolves the tempid to
	// the existing entity.
	UniqueIdentity
)

// Attribute is the definition of a schema attribute.
type Attribute struct {
	ValueType datom.ValueType
	// Multival is true for cardinality-many attributes.
	Multival  bool
	Unique    Unique
	Index     bool
	Fulltext  bool
	Component bool
	NoHistory bool
}

// Flags packs the four index participation booleans into one byte for
// the search pipeline.
func (a Attribute) Flags() byte {
	var flags byte
	if a.Index {
		flags |= datom.FlagIndexAVET
	}
	if a.ValueType == datom.ValueTypeRef {
		flags |= datom.FlagIndexVAET
	}
	if a.Fulltext {
		flags |= datom.FlagIndexFulltext
	}
	if a.Unique != UniqueNone {
		flags |= datom.FlagUniqueValue
	}
	return flags
}

// Validate checks the cross-field invariants of a definition:
// unique implies indexed, fulltext implies string and indexed,
// component implies ref. ident is called lazily to name the attribute
// in error messages.
func (a Attribute) Validate(ident func() string) error {
	if a.Unique == UniqueValue && !a.Index {
		return &BadSchemaAssertion{Ident: ident(), Message: ":db/unique :db.unique/value without :db/index true"}
	}
	if a.Unique == UniqueIdentity && !a.Index {
		return &BadSchemaAssertion{Ident: ident(), Message: ":db/unique :db.unique/identity without :db/index true"}
	}
	if a.Fulltext && a.ValueType != datom.ValueTypeString {
		return &BadSchemaAssertion{Ident: ident(), Message: ":db/fulltext true without :db/valueType :db.type/string"}
	}
	if a.Fulltext && !a.Index {
		return &BadSchemaAssertion{Ident: ident(), Message: ":db/fulltext true without :db/index true"}
	}
	if a.Component && a.ValueType != datom.ValueTypeRef {
		return &BadSchemaAssertion{Ident: ident(), Message: ":db/isComponent true without :db/valueType :db.type/ref"}
	}
	return nil
}
