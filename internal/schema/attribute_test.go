package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

func name(s string) func() string {
	return func() string { return s }
}

func TestAttributeValidate(t *testing.T) {
	cases := []struct {
		name string
		attr Attribute
		ok   bool
	}{
		{"plain string", Attribute{ValueType: datom.ValueTypeString}, true},
		{"unique value indexed", Attribute{ValueType: datom.ValueTypeString, Unique: UniqueValue, Index: true}, true},
		{"unique value unindexed", Attribute{ValueType: datom.ValueTypeString, Unique: UniqueValue}, false},
		{"unique identity unindexed", Attribute{ValueType: datom.ValueTypeKeyword, Unique: UniqueIdentity}, false},
		{"fulltext string indexed", Attribute{ValueType: datom.ValueTypeString, Fulltext: true, Index: true}, true},
		{"fulltext non-string", Attribute{ValueType: datom.ValueTypeLong, Fulltext: true, Index: true}, false},
		{"fulltext unindexed", Attribute{ValueType: datom.ValueTypeString, Fulltext: true}, false},
		{"component ref", Attribute{ValueType: datom.ValueTypeRef, Component: true}, true},
		{"component non-ref", Attribute{ValueType: datom.ValueTypeLong, Component: true}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.attr.Validate(name("test/attr"))
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsBadSchemaAssertion(err), "want BadSchemaAssertion, got %v", err)
			}
		})
	}
}

func TestAttributeFlags(t *testing.T) {
	a := Attribute{ValueType: datom.ValueTypeRef, Index: true}
	assert.Equal(t, datom.FlagIndexAVET|datom.FlagIndexVAET, a.Flags())

	b := Attribute{ValueType: datom.ValueTypeString, Fulltext: true, Index: true, Unique: UniqueIdentity}
	assert.Equal(t, datom.FlagIndexAVET|datom.FlagIndexFulltext|datom.FlagUniqueValue, b.Flags())

	assert.Equal(t, byte(0), Attribute{ValueType: datom.ValueTypeLong}.Flags())
}

func TestBuilderInstallRequiresValueType(t *testing.T) {
	b := (&AttributeBuilder{}).Index(true)
	err := b.ValidateInstall(name("test/attr"))
	assert.True(t, IsBadSchemaAssertion(err))

	b.ValueType(datom.ValueTypeLong)
	assert.NoError(t, b.ValidateInstall(name("test/attr")))
}

func TestBuilderAlterRejectsImmutableFacets(t *testing.T) {
	vt := (&AttributeBuilder{}).ValueType(datom.ValueTypeLong)
	assert.True(t, IsBadSchemaAssertion(vt.ValidateAlter(name("test/attr"))))

	ft := (&AttributeBuilder{}).Fulltext(true)
	assert.True(t, IsBadSchemaAssertion(ft.ValidateAlter(name("test/attr"))))

	ok := (&AttributeBuilder{}).Index(true).Multival(true)
	assert.NoError(t, ok.ValidateAlter(name("test/attr")))
}

func TestBuilderMutateReportsChanges(t *testing.T) {
	attr := Attribute{ValueType: datom.ValueTypeString, Index: true}

	b := (&AttributeBuilder{}).Index(true).Multival(true).Unique(UniqueValue)
	alterations := b.Mutate(&attr)

	// Index was already true, so only cardinality and uniqueness
	// count as alterations.
	assert.ElementsMatch(t, []Alteration{AlterCardinality, AlterUnique}, alterations)
	assert.True(t, attr.Multival)
	assert.Equal(t, UniqueValue, attr.Unique)
}
