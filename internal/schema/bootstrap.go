package schema

import (
	"math"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/partition"
)

// CoreSchemaVersion is the version of the db.schema/core vocabulary.
const CoreSchemaVersion = 1

var bootstrapIdents = []struct {
	Ident datom.Keyword
	Entid datom.Entid
}{
	{"db.part/db", DBPartDB},
	{"db/ident", DBIdent},
	{"db/txInstant", DBTxInstant},
	{"db.install/partition", DBInstallPartition},
	{"db.install/valueType", DBInstallValueType},
	{"db.install/attribute", DBInstallAttribute},
	{"db/valueType", DBValueType},
	{"db/cardinality", DBCardinality},
	{"db/unique", DBUnique},
	{"db/isComponent", DBIsComponent},
	{"db/index", DBIndex},
	{"db/fulltext", DBFulltext},
	{"db/noHistory", DBNoHistory},
	{"db/add", DBAdd},
	{"db/retract", DBRetract},
	{"db.part/user", DBPartUser},
	{"db.part/tx", DBPartTx},
	{"db.alter/attribute", DBAlterAttribute},
	{"db.type/ref", DBTypeRef},
	{"db.type/keyword", DBTypeKeyword},
	{"db.type/long", DBTypeLong},
	{"db.type/double", DBTypeDouble},
	{"db.type/string", DBTypeString},
	{"db.type/uuid", DBTypeUUID},
	{"db.type/boolean", DBTypeBoolean},
	{"db.type/instant", DBTypeInstant},
	{"db.cardinality/one", DBCardinalityOne},
	{"db.cardinality/many", DBCardinalityMany},
	{"db.unique/value", DBUniqueValue},
	{"db.unique/identity", DBUniqueIdentity},
	{"db/doc", DBDoc},
	{"db.schema/version", DBSchemaVersion},
	{"db.schema/attribute", DBSchemaAttribute},
	{"db.schema/core", DBSchemaCore},
}

var bootstrapAttributes = []struct {
	Ident datom.Keyword
	Attr  Attribute
}{
	{"db/ident", Attribute{ValueType: datom.ValueTypeKeyword, Index: true, Unique: UniqueIdentity}},
	{"db.install/partition", Attribute{ValueType: datom.ValueTypeRef, Multival: true}},
	{"db.install/valueType", Attribute{ValueType: datom.ValueTypeRef, Multival: true}},
	{"db.install/attribute", Attribute{ValueType: datom.ValueTypeRef, Multival: true}},
	{"db/txInstant", Attribute{ValueType: datom.ValueTypeInstant, Index: true}},
	{"db/valueType", Attribute{ValueType: datom.ValueTypeRef}},
	{"db/cardinality", Attribute{ValueType: datom.ValueTypeRef}},
	{"db/doc", Attribute{ValueType: datom.ValueTypeString}},
	{"db/unique", Attribute{ValueType: datom.ValueTypeRef}},
	{"db/isComponent", Attribute{ValueType: datom.ValueTypeBoolean}},
	{"db/index", Attribute{ValueType: datom.ValueTypeBoolean}},
	{"db/fulltext", Attribute{ValueType: datom.ValueTypeBoolean}},
	{"db/noHistory", Attribute{ValueType: datom.ValueTypeBoolean}},
	{"db.alter/attribute", Attribute{ValueType: datom.ValueTypeRef, Multival: true}},
	{"db.schema/version", Attribute{ValueType: datom.ValueTypeLong}},
	{"db.schema/attribute", Attribute{ValueType: datom.ValueTypeRef, Multival: true, Index: true, Unique: UniqueValue}},
}

// coreSchemaAttributes lists the vocabulary recorded as belonging to
// the db.schema/core fragment.
var coreSchemaAttributes = []datom.Keyword{
	"db/ident",
	"db.install/partition",
	"db.install/valueType",
	"db.install/attribute",
	"db/txInstant",
	"db/valueType",
	"db/cardinality",
	"db/doc",
	"db/unique",
	"db/isComponent",
	"db/index",
	"db/fulltext",
	"db/noHistory",
	"db.alter/attribute",
	"db.schema/version",
	"db.schema/attribute",
}

// BootstrapPartitionMap returns the three built-in partitions. The db
// partition's next-free pointer sits just past the bootstrap entids.
func BootstrapPartitionMap() partition.Map {
	return partition.Map{
		partition.PartDB:   partition.New(0, UserEntids0, DBSchemaCore+1, false),
		partition.PartUser: partition.New(UserEntids0, TxEntids0, UserEntids0, true),
		partition.PartTx:   partition.New(TxEntids0, math.MaxInt64, TxEntids0, false),
	}
}

// BootstrapIdentMap returns the built-in ident bindings.
func BootstrapIdentMap() map[datom.Keyword]datom.Entid {
	m := make(map[datom.Keyword]datom.Entid, len(bootstrapIdents))
	for _, b := range bootstrapIdents {
		m[b.Ident] = b.Entid
	}
	return m
}

// Bootstrap returns the built-in schema snapshot.
func Bootstrap() *Schema {
	idents := BootstrapIdentMap()
	attrs := make(map[datom.Entid]Attribute, len(bootstrapAttributes))
	for _, b := range bootstrapAttributes {
		attrs[idents[b.Ident]] = b.Attr
	}
	s, err := New(idents, attrs)
	if err != nil {
		// The bootstrap data is fixed; failure is a coding error.
		panic(err)
	}
	return s
}

// Assertion is a symbolic (entity, attribute, value) add, used only to
// express the bootstrap transaction before entids exist in the store.
type Assertion struct {
	E datom.Keyword
	A datom.Keyword
	V datom.TypedValue
}

// BootstrapAssertions returns the facts of transaction zero: the ident
// bindings, the attribute definitions, and the core schema membership.
func BootstrapAssertions() []Assertion {
	idents := BootstrapIdentMap()
	var out []Assertion

	for _, b := range bootstrapIdents {
		out = append(out, Assertion{E: b.Ident, A: "db/ident", V: b.Ident})
	}

	for _, b := range bootstrapAttributes {
		a := b.Attr
		out = append(out, Assertion{E: b.Ident, A: "db/valueType", V: datom.Ref(EntidForValueType(a.ValueType))})
		card := DBCardinalityOne
		if a.Multival {
			card = DBCardinalityMany
		}
		out = append(out, Assertion{E: b.Ident, A: "db/cardinality", V: datom.Ref(card)})
		switch a.Unique {
		case UniqueValue:
			out = append(out, Assertion{E: b.Ident, A: "db/unique", V: datom.Ref(DBUniqueValue)})
		case UniqueIdentity:
			out = append(out, Assertion{E: b.Ident, A: "db/unique", V: datom.Ref(DBUniqueIdentity)})
		}
		if a.Index {
			out = append(out, Assertion{E: b.Ident, A: "db/index", V: datom.Boolean(true)})
		}
		if a.Fulltext {
			out = append(out, Assertion{E: b.Ident, A: "db/fulltext", V: datom.Boolean(true)})
		}
		if a.Component {
			out = append(out, Assertion{E: b.Ident, A: "db/isComponent", V: datom.Boolean(true)})
		}
	}

	for _, kw := range coreSchemaAttributes {
		out = append(out, Assertion{E: "db.schema/core", A: "db.schema/attribute", V: datom.Ref(idents[kw])})
	}
	out = append(out, Assertion{E: "db.schema/core", A: "db.schema/version", V: datom.Long(CoreSchemaVersion)})

	return out
}
