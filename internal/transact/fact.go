package transact

import (
	"fmt"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// Ref names an entity in a fact: by entid, by ident, or by tempid.
// Refs are also legal in the value position of ref-typed attributes.
type Ref interface {
	Value
	ref() // sealed
}

// EntidRef names an entity by its numeric id.
type EntidRef datom.Entid

// IdentRef names an entity by its ident keyword, e.g. "db/ident".
type IdentRef datom.Keyword

// Tempid is a caller-chosen placeholder resolved during the
// transaction, either to an existing entity through a unique-identity
// attribute or to a freshly allocated id. Every occurrence of the
// same tempid in one transaction resolves to the same entity.
type Tempid string

func (EntidRef) ref() {}
func (IdentRef) ref() {}
func (Tempid) ref()   {}

func (r EntidRef) String() string { return fmt.Sprintf("%d", int64(r)) }
func (r IdentRef) String() string { return datom.Keyword(r).String() }
func (r Tempid) String() string   { return fmt.Sprintf("tempid %q", string(r)) }

// Value is the value position of a fact: a concrete typed value, or a
// Ref when the attribute is ref-typed.
type Value interface {
	factValue() // sealed
}

func (EntidRef) factValue() {}
func (IdentRef) factValue() {}
func (Tempid) factValue()   {}

type literal struct {
	v datom.TypedValue
}

func (literal) factValue() {}

// Literal wraps a concrete typed value for the value position.
func Literal(v datom.TypedValue) Value {
	return literal{v: v}
}

// Fact is one assertion or retraction submitted to the transactor.
type Fact struct {
	Add bool
	E   Ref
	A   Ref
	V   Value
}

// Assert builds an assertion.
func Assert(e, a Ref, v Value) Fact {
	return Fact{Add: true, E: e, A: a, V: v}
}

// Retract builds a retraction.
func Retract(e, a Ref, v Value) Fact {
	return Fact{Add: false, E: e, A: a, V: v}
}
