package schema

import (
	"fmt"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// Alteration identifies which facet of an installed attribute changed.
type Alteration int

const (
	AlterIndex Alteration = iota
	AlterUnique
	AlterCardinality
	AlterNoHistory
	AlterIsComponent
)

func (a Alteration) String() string {
	switch a {
	case AlterIndex:
		return "index"
	case AlterUnique:
		return "unique"
	case AlterCardinality:
		return "cardinality"
	case AlterNoHistory:
		return "noHistory"
	case AlterIsComponent:
		return "isComponent"
	default:
		return fmt.Sprintf("alteration-%d", int(a))
	}
}

// MetadataReport summarizes what the committed metadata assertions of
// one transaction did to the schema.
type MetadataReport struct {
	AttributesInstalled map[datom.Entid]struct{}
	AttributesAltered   map[datom.Entid][]Alteration
	IdentsAltered       map[datom.Entid]struct{}
}

// AttributesDidChange reports whether any attribute was installed or
// altered.
func (r *MetadataReport) AttributesDidChange() bool {
	return len(r.AttributesInstalled) > 0 || len(r.AttributesAltered) > 0
}

// Empty reports whether the transaction touched no metadata at all.
func (r *MetadataReport) Empty() bool {
	return !r.AttributesDidChange() && len(r.IdentsAltered) == 0
}

// UpdateAttributeMap folds committed schema-defining assertions into
// attrs, mutating it in place, and reports installs and alterations.
// Callers pass a copy of the previous snapshot's attribute map.
//
// ident resolves an entid to a display name for error messages.
func UpdateAttributeMap(attrs map[datom.Entid]Attribute, assertions []datom.Datom, ident func(datom.Entid) string) (MetadataReport, error) {
	report := MetadataReport{
		AttributesInstalled: make(map[datom.Entid]struct{}),
		AttributesAltered:   make(map[datom.Entid][]Alteration),
		IdentsAltered:       make(map[datom.Entid]struct{}),
	}

	builders := make(map[datom.Entid]*AttributeBuilder)
	builder := func(e datom.Entid) *AttributeBuilder {
		b, ok := builders[e]
		if !ok {
			b = &AttributeBuilder{}
			builders[e] = b
		}
		return b
	}

	// Retractions only matter when they are not half of a
	// retract-then-add replacement, so apply assertions first.
	var retractions []datom.Datom
	for _, d := range assertions {
		if !IsSchemaAttribute(d.A) {
			continue
		}
		if !d.Added {
			retractions = append(retractions, d)
			continue
		}
		if err := applyAssertion(builder(d.E), d, ident); err != nil {
			return report, err
		}
	}
	for _, d := range retractions {
		if err := applyRetraction(builder(d.E), d, ident); err != nil {
			return report, err
		}
	}

	for e, b := range builders {
		if b.Empty() {
			continue
		}
		name := func() string { return ident(e) }
		if existing, ok := attrs[e]; ok {
			if err := b.ValidateAlter(name); err != nil {
				return report, err
			}
			altered := existing
			alterations := b.Mutate(&altered)
			if len(alterations) == 0 {
				continue
			}
			if err := altered.Validate(name); err != nil {
				return report, err
			}
			attrs[e] = altered
			report.AttributesAltered[e] = alterations
		} else {
			if err := b.ValidateInstall(name); err != nil {
				return report, err
			}
			installed := b.Build()
			if err := installed.Validate(name); err != nil {
				return report, err
			}
			attrs[e] = installed
			report.AttributesInstalled[e] = struct{}{}
		}
	}

	return report, nil
}

func applyAssertion(b *AttributeBuilder, d datom.Datom, ident func(datom.Entid) string) error {
	switch d.A {
	case DBValueType:
		ref, ok := d.V.(datom.Ref)
		if !ok {
			return &BadSchemaAssertion{Ident: ident(d.E), Message: ":db/valueType expects a :db.type ref"}
		}
		t, ok := valueTypeForEntid(datom.Entid(ref))
		if !ok {
			return &BadSchemaAssertion{Ident: ident(d.E), Message: fmt.Sprintf("unknown value type entid %d", ref)}
		}
		b.ValueType(t)
	case DBCardinality:
		switch d.V {
		case datom.Ref(DBCardinalityOne):
			b.Multival(false)
		case datom.Ref(DBCardinalityMany):
			b.Multival(true)
		default:
			return &BadSchemaAssertion{Ident: ident(d.E), Message: ":db/cardinality expects :db.cardinality/one or :db.cardinality/many"}
		}
	case DBUnique:
		switch d.V {
		case datom.Ref(DBUniqueValue):
			b.Unique(UniqueValue)
		case datom.Ref(DBUniqueIdentity):
			b.Unique(UniqueIdentity)
		default:
			return &BadSchemaAssertion{Ident: ident(d.E), Message: ":db/unique expects :db.unique/value or :db.unique/identity"}
		}
	case DBIndex:
		v, ok := d.V.(datom.Boolean)
		if !ok {
			return &BadSchemaAssertion{Ident: ident(d.E), Message: ":db/index expects a boolean"}
		}
		b.Index(bool(v))
	case DBFulltext:
		v, ok := d.V.(datom.Boolean)
		if !ok {
			return &BadSchemaAssertion{Ident: ident(d.E), Message: ":db/fulltext expects a boolean"}
		}
		b.Fulltext(bool(v))
	case DBIsComponent:
		v, ok := d.V.(datom.Boolean)
		if !ok {
			return &BadSchemaAssertion{Ident: ident(d.E), Message: ":db/isComponent expects a boolean"}
		}
		b.Component(bool(v))
	case DBNoHistory:
		v, ok := d.V.(datom.Boolean)
		if !ok {
			return &BadSchemaAssertion{Ident: ident(d.E), Message: ":db/noHistory expects a boolean"}
		}
		b.NoHistory(bool(v))
	}
	return nil
}

// applyRetraction handles a retraction that was not superseded by a new
// assertion in the same transaction. Losing uniqueness is always
// permitted; flag attributes fall back to false; value type and
// cardinality cannot simply vanish from an installed attribute.
func applyRetraction(b *AttributeBuilder, d datom.Datom, ident func(datom.Entid) string) error {
	switch d.A {
	case DBUnique:
		if b.unique == nil {
			b.Unique(UniqueNone)
		}
	case DBIndex:
		if b.index == nil {
			b.Index(false)
		}
	case DBIsComponent:
		if b.component == nil {
			b.Component(false)
		}
	case DBNoHistory:
		if b.noHistory == nil {
			b.NoHistory(false)
		}
	case DBFulltext:
		if b.fulltext == nil {
			b.Fulltext(false)
		}
	case DBValueType:
		if b.valueType == nil {
			return &BadSchemaAssertion{Ident: ident(d.E), Message: "retracting :db/valueType is not supported"}
		}
	case DBCardinality:
		if b.multival == nil {
			return &BadSchemaAssertion{Ident: ident(d.E), Message: "retracting :db/cardinality is not supported"}
		}
	}
	return nil
}
