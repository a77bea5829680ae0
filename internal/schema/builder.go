package schema

import "github.com/CavHack/EinsteinDB/internal/datom"

// AttributeBuilder accumulates the schema-defining assertions seen for
// one entity in one transaction. Unset fields mean "not mentioned";
// installs and alterations validate them differently.
type AttributeBuilder struct {
	valueType *datom.ValueType
	multival  *bool
	unique    *Unique
	index     *bool
	fulltext  *bool
	component *bool
	noHistory *bool
}

func (b *AttributeBuilder) ValueType(t datom.ValueType) *AttributeBuilder {
	b.valueType = &t
	return b
}

func (b *AttributeBuilder) Multival(m bool) *AttributeBuilder {
	b.multival = &m
	return b
}

func (b *AttributeBuilder) Unique(u Unique) *AttributeBuilder {
	b.unique = &u
	return b
}

func (b *AttributeBuilder) Index(i bool) *AttributeBuilder {
	b.index = &i
	return b
}

func (b *AttributeBuilder) Fulltext(f bool) *AttributeBuilder {
	b.fulltext = &f
	return b
}

func (b *AttributeBuilder) Component(c bool) *AttributeBuilder {
	b.component = &c
	return b
}

func (b *AttributeBuilder) NoHistory(n bool) *AttributeBuilder {
	b.noHistory = &n
	return b
}

// Empty reports whether no schema-defining field was mentioned.
func (b *AttributeBuilder) Empty() bool {
	return b.valueType == nil && b.multival == nil && b.unique == nil &&
		b.index == nil && b.fulltext == nil && b.component == nil && b.noHistory == nil
}

// DefinesAttribute reports whether the builder installs a new
// attribute: only entities asserting a value type become attributes.
func (b *AttributeBuilder) DefinesAttribute() bool {
	return b.valueType != nil
}

// ValidateInstall checks the builder as a brand-new definition.
func (b *AttributeBuilder) ValidateInstall(ident func() string) error {
	if b.valueType == nil {
		return &BadSchemaAssertion{Ident: ident(), Message: "new attribute does not set :db/valueType"}
	}
	return nil
}

// ValidateAlter checks the builder as an alteration of an existing
// definition. Value type and fulltext participation are immutable
// after installation.
func (b *AttributeBuilder) ValidateAlter(ident func() string) error {
	if b.valueType != nil {
		return &BadSchemaAssertion{Ident: ident(), Message: "schema alteration must not set :db/valueType"}
	}
	if b.fulltext != nil {
		return &BadSchemaAssertion{Ident: ident(), Message: "schema alteration must not set :db/fulltext"}
	}
	return nil
}

// Build constructs the attribute for a fresh install. Unmentioned
// fields take their zero defaults: cardinality one, no uniqueness,
// not indexed.
func (b *AttributeBuilder) Build() Attribute {
	var attr Attribute
	if b.valueType != nil {
		attr.ValueType = *b.valueType
	}
	if b.multival != nil {
		attr.Multival = *b.multival
	}
	if b.unique != nil {
		attr.Unique = *b.unique
	}
	if b.index != nil {
		attr.Index = *b.index
	}
	if b.fulltext != nil {
		attr.Fulltext = *b.fulltext
	}
	if b.component != nil {
		attr.Component = *b.component
	}
	if b.noHistory != nil {
		attr.NoHistory = *b.noHistory
	}
	return attr
}

// Mutate applies the mentioned fields to an existing attribute and
// returns the list of alterations that actually changed it.
func (b *AttributeBuilder) Mutate(attr *Attribute) []Alteration {
	var altered []Alteration
	if b.multival != nil && *b.multival != attr.Multival {
		attr.Multival = *b.multival
		altered = append(altered, AlterCardinality)
	}
	if b.unique != nil && *b.unique != attr.Unique {
		attr.Unique = *b.unique
		altered = append(altered, AlterUnique)
	}
	if b.index != nil && *b.index != attr.Index {
		attr.Index = *b.index
		altered = append(altered, AlterIndex)
	}
	if b.component != nil && *b.component != attr.Component {
		attr.Component = *b.component
		altered = append(altered, AlterIsComponent)
	}
	if b.noHistory != nil && *b.noHistory != attr.NoHistory {
		attr.NoHistory = *b.noHistory
		altered = append(altered, AlterNoHistory)
	}
	return altered
}
