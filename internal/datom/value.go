package datom

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Entid is a numeric entity id. Attributes, transactions, and ordinary
// entities all draw from the same id space, carved into partitions.
type Entid int64

// Keyword is a namespaced symbolic name such as "db/ident", stored
// without the leading colon. Keywords name idents and also appear as
// values (value type keyword).
type Keyword string

// String renders the keyword in its external form, ":db/ident".
func (k Keyword) String() string {
	return ":" + string(k)
}

// ValueType enumerates the value types an attribute can declare.
type ValueType int

const (
	ValueTypeRef ValueType = iota
	ValueTypeBoolean
	ValueTypeInstant
	ValueTypeLong
	ValueTypeDouble
	ValueTypeString
	ValueTypeUUID
	ValueTypeKeyword
)

// Keyword returns the ident naming this value type, e.g. "db.type/ref".
func (t ValueType) Keyword() Keyword {
	switch t {
	case ValueTypeRef:
		return "db.type/ref"
	case ValueTypeBoolean:
		return "db.type/boolean"
	case ValueTypeInstant:
		return "db.type/instant"
	case ValueTypeLong:
		return "db.type/long"
	case ValueTypeDouble:
		return "db.type/double"
	case ValueTypeString:
		return "db.type/string"
	case ValueTypeUUID:
		return "db.type/uuid"
	case ValueTypeKeyword:
		return "db.type/keyword"
	default:
		return Keyword(fmt.Sprintf("db.type/unknown-%d", int(t)))
	}
}

func (t ValueType) String() string {
	return t.Keyword().String()
}

// SQL type tags. Longs and doubles share a tag because SQLite keeps
// integral and decimal storage classes distinct under one column.
const (
	TagRef     = 0
	TagBoolean = 1
	TagInstant = 4
	TagNumeric = 5
	TagString  = 10
	TagUUID    = 11
	TagKeyword = 13
)

// TypedValue is a sealed interface over the closed set of value
// variants: Ref, Boolean, Long, Double, Instant, String, UUID,
// Keyword, and FulltextID.
type TypedValue interface {
	ValueType() ValueType
	typedValue() // sealed
}

// Ref is an entity-id-valued datom value.
type Ref Entid

// Boolean is a boolean datom value.
type Boolean bool

// Long is a 64-bit integer datom value.
type Long int64

// Double is a 64-bit float datom value.
type Double float64

// String is a string datom value.
type String string

// UUID is a uuid datom value, stored as a 16-byte blob.
type UUID uuid.UUID

// FulltextID is a string value held by reference: the rowid of an
// interned row in fulltext_values. It only appears in the
// current-state projection of fulltext attributes; read paths that
// surface datoms resolve it back to the text.
type FulltextID int64

// Instant is a point in time, stored at microsecond precision.
// Sub-microsecond detail is discarded at construction so that equality
// matches storage equality.
type Instant struct {
	micros int64
}

func (Ref) typedValue()        {}
func (Boolean) typedValue()    {}
func (Long) typedValue()       {}
func (Double) typedValue()     {}
func (String) typedValue()     {}
func (UUID) typedValue()       {}
func (FulltextID) typedValue() {}
func (Instant) typedValue()    {}
func (Keyword) typedValue()    {}

func (Ref) ValueType() ValueType        { return ValueTypeRef }
func (Boolean) ValueType() ValueType    { return ValueTypeBoolean }
func (Long) ValueType() ValueType       { return ValueTypeLong }
func (Double) ValueType() ValueType     { return ValueTypeDouble }
func (String) ValueType() ValueType     { return ValueTypeString }
func (UUID) ValueType() ValueType       { return ValueTypeUUID }
func (FulltextID) ValueType() ValueType { return ValueTypeString }
func (Instant) ValueType() ValueType    { return ValueTypeInstant }
func (Keyword) ValueType() ValueType    { return ValueTypeKeyword }

// NewInstant truncates t to microsecond precision.
func NewInstant(t time.Time) Instant {
	return Instant{micros: t.UTC().UnixMicro()}
}

// InstantFromMicros builds an Instant from microseconds since the epoch.
// Negative values are times before 1970.
func InstantFromMicros(us int64) Instant {
	return Instant{micros: us}
}

// Micros returns microseconds since the epoch.
func (i Instant) Micros() int64 {
	return i.micros
}

// Time returns the instant as a UTC time.Time.
func (i Instant) Time() time.Time {
	return time.UnixMicro(i.micros).UTC()
}

func (i Instant) String() string {
	return i.Time().Format(time.RFC3339Nano)
}

// ToSQLValue returns the storage value and type tag for v.
func ToSQLValue(v TypedValue) (any, int) {
	switch val := v.(type) {
	case Ref:
		return int64(val), TagRef
	case Boolean:
		if val {
			return int64(1), TagBoolean
		}
		return int64(0), TagBoolean
	case Instant:
		return val.Micros(), TagInstant
	case Long:
		return int64(val), TagNumeric
	case Double:
		return float64(val), TagNumeric
	case String:
		return string(val), TagString
	case FulltextID:
		return int64(val), TagString
	case UUID:
		b := make([]byte, 16)
		copy(b, val[:])
		return b, TagUUID
	case Keyword:
		return val.String(), TagKeyword
	default:
		panic(fmt.Sprintf("datom: unknown TypedValue %T", v))
	}
}

// FromSQLValue reconstructs a TypedValue from a storage value and tag.
// Text columns may scan as either string or []byte depending on the
// driver, so both are accepted.
func FromSQLValue(value any, tag int) (TypedValue, error) {
	switch tag {
	case TagRef:
		x, ok := value.(int64)
		if !ok {
			return nil, badSQLValue(value, tag)
		}
		return Ref(x), nil
	case TagBoolean:
		x, ok := value.(int64)
		if !ok {
			return nil, badSQLValue(value, tag)
		}
		return Boolean(x != 0), nil
	case TagInstant:
		x, ok := value.(int64)
		if !ok {
			return nil, badSQLValue(value, tag)
		}
		return InstantFromMicros(x), nil
	case TagNumeric:
		switch x := value.(type) {
		case int64:
			return Long(x), nil
		case float64:
			return Double(x), nil
		}
		return nil, badSQLValue(value, tag)
	case TagString:
		// Integral storage under the string tag is an interned
		// fulltext reference.
		if id, ok := value.(int64); ok {
			return FulltextID(id), nil
		}
		s, ok := textValue(value)
		if !ok {
			return nil, badSQLValue(value, tag)
		}
		return String(s), nil
	case TagUUID:
		b, ok := value.([]byte)
		if !ok || len(b) != 16 {
			return nil, badSQLValue(value, tag)
		}
		u, err := uuid.FromBytes(b)
		if err != nil {
			return nil, badSQLValue(value, tag)
		}
		return UUID(u), nil
	case TagKeyword:
		s, ok := textValue(value)
		if !ok || len(s) < 2 || s[0] != ':' {
			return nil, badSQLValue(value, tag)
		}
		return Keyword(s[1:]), nil
	default:
		return nil, badSQLValue(value, tag)
	}
}

func textValue(value any) (string, bool) {
	switch x := value.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	}
	return "", false
}

func badSQLValue(value any, tag int) error {
	return fmt.Errorf("datom: bad SQL value pair (%v, tag %d)", value, tag)
}

// ValueKey returns a string that is equal for exactly those values
// whose storage encodings are equal. The transactor uses it to give
// datom batches set semantics.
func ValueKey(v TypedValue) string {
	// Fulltext references get their own keyspace so an id never
	// collides with a numeric-looking string.
	if id, ok := v.(FulltextID); ok {
		return strconv.Itoa(TagString) + "|#" + strconv.FormatInt(int64(id), 10)
	}
	sqlValue, tag := ToSQLValue(v)
	var body string
	switch x := sqlValue.(type) {
	case int64:
		// Storage-class prefixes keep Long(1) and Double(1.0) apart
		// under the shared numeric tag.
		body = "i" + strconv.FormatInt(x, 10)
	case float64:
		body = "f" + strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		body = "s" + x
	case []byte:
		body = hex.EncodeToString(x)
	default:
		body = fmt.Sprint(x)
	}
	return strconv.Itoa(tag) + "|" + body
}

// ValuesEqual reports whether two typed values have identical storage
// encodings. Long(1) and Double(1.0) are not equal: they share a tag
// but differ in storage class.
func ValuesEqual(a, b TypedValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return ValueKey(a) == ValueKey(b)
}
