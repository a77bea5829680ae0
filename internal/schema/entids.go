package schema

import "github.com/CavHack/EinsteinDB/internal/datom"

// Entids assigned by the bootstrap transaction. These are stable across
// the life of a store; user entities start at UserEntids0.
const (
	DBPartDB           datom.Entid = 0
	DBIdent            datom.Entid = 1
	DBTxInstant        datom.Entid = 3
	DBInstallPartition datom.Entid = 4
	DBInstallValueType datom.Entid = 5
	DBInstallAttribute datom.Entid = 6
	DBValueType        datom.Entid = 7
	DBCardinality      datom.Entid = 8
	DBUnique           datom.Entid = 9
	DBIsComponent      datom.Entid = 10
	DBIndex            datom.Entid = 11
	DBFulltext         datom.Entid = 12
	DBNoHistory        datom.Entid = 13
	DBAdd              datom.Entid = 14
	DBRetract          datom.Entid = 15
	DBPartUser         datom.Entid = 16
	DBPartTx           datom.Entid = 17
	DBAlterAttribute   datom.Entid = 22
	DBTypeRef          datom.Entid = 23
	DBTypeKeyword      datom.Entid = 24
	DBTypeLong         datom.Entid = 25
	DBTypeDouble       datom.Entid = 26
	DBTypeString       datom.Entid = 27
	DBTypeUUID         datom.Entid = 28
	DBTypeBoolean      datom.Entid = 30
	DBTypeInstant      datom.Entid = 31
	DBCardinalityOne   datom.Entid = 33
	DBCardinalityMany  datom.Entid = 34
	DBUniqueValue      datom.Entid = 35
	DBUniqueIdentity   datom.Entid = 36
	DBDoc              datom.Entid = 37
	DBSchemaVersion    datom.Entid = 38
	DBSchemaAttribute  datom.Entid = 39
	DBSchemaCore       datom.Entid = 40
)

// UserEntids0 is the first entity id of the user partition; TxEntids0
// is the first transaction id.
const (
	UserEntids0 datom.Entid = 0x10000
	TxEntids0   datom.Entid = 0x10000000
)

// IsIdentAttribute reports whether a is the ident-binding attribute.
// Any committed change to an ident fact triggers a full recompute of
// the idents view.
func IsIdentAttribute(a datom.Entid) bool {
	return a == DBIdent
}

// IsSchemaAttribute reports whether a is one of the attribute-defining
// attributes materialized into the schema view.
func IsSchemaAttribute(a datom.Entid) bool {
	switch a {
	case DBValueType, DBCardinality, DBUnique, DBIndex, DBFulltext, DBIsComponent, DBNoHistory:
		return true
	}
	return false
}

// IsMetadataAttribute reports whether a committed assertion on a should
// be fed to the spacetime materializer.
func IsMetadataAttribute(a datom.Entid) bool {
	return IsIdentAttribute(a) || IsSchemaAttribute(a)
}

// valueTypeForEntid maps a db.type ident entid to its ValueType.
func valueTypeForEntid(e datom.Entid) (datom.ValueType, bool) {
	switch e {
	case DBTypeRef:
		return datom.ValueTypeRef, true
	case DBTypeKeyword:
		return datom.ValueTypeKeyword, true
	case DBTypeLong:
		return datom.ValueTypeLong, true
	case DBTypeDouble:
		return datom.ValueTypeDouble, true
	case DBTypeString:
		return datom.ValueTypeString, true
	case DBTypeUUID:
		return datom.ValueTypeUUID, true
	case DBTypeBoolean:
		return datom.ValueTypeBoolean, true
	case DBTypeInstant:
		return datom.ValueTypeInstant, true
	}
	return 0, false
}

// EntidForValueType is the inverse of valueTypeForEntid.
func EntidForValueType(t datom.ValueType) datom.Entid {
	switch t {
	case datom.ValueTypeRef:
		return DBTypeRef
	case datom.ValueTypeKeyword:
		return DBTypeKeyword
	case datom.ValueTypeLong:
		return DBTypeLong
	case datom.ValueTypeDouble:
		return DBTypeDouble
	case datom.ValueTypeString:
		return DBTypeString
	case datom.ValueTypeUUID:
		return DBTypeUUID
	case datom.ValueTypeBoolean:
		return DBTypeBoolean
	case datom.ValueTypeInstant:
		return DBTypeInstant
	}
	panic("schema: unknown value type")
}
