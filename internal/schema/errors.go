package schema

import (
	"errors"
	"fmt"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// BadSchemaAssertion reports a malformed attribute definition. It is
// raised at install time, before the definition reaches the log.
type BadSchemaAssertion struct {
	// Ident names the offending attribute when known; may be empty.
	Ident   string
	Message string
}

func (e *BadSchemaAssertion) Error() string {
	if e.Ident != "" {
		return fmt.Sprintf("bad schema assertion: %s for %s", e.Message, e.Ident)
	}
	return fmt.Sprintf("bad schema assertion: %s", e.Message)
}

// IsBadSchemaAssertion reports whether err is a BadSchemaAssertion,
// unwrapping as needed.
func IsBadSchemaAssertion(err error) bool {
	var e *BadSchemaAssertion
	return errors.As(err, &e)
}

// AlterationFailed reports an attribute alteration that the current
// state of the store does not permit, such as narrowing cardinality
// while an entity holds several values.
type AlterationFailed struct {
	Attribute datom.Entid
	Message   string
}

func (e *AlterationFailed) Error() string {
	return fmt.Sprintf("schema alteration failed for attribute %d: %s", e.Attribute, e.Message)
}

// IsAlterationFailed reports whether err is an AlterationFailed,
// unwrapping as needed.
func IsAlterationFailed(err error) bool {
	var e *AlterationFailed
	return errors.As(err, &e)
}

// UnrecognizedEntid reports a reference to an entity id with no ident
// or attribute binding in the current schema snapshot.
type UnrecognizedEntid struct {
	Entid datom.Entid
}

func (e *UnrecognizedEntid) Error() string {
	return fmt.Sprintf("unrecognized entid %d", e.Entid)
}

// UnrecognizedIdent reports a keyword with no entid binding.
type UnrecognizedIdent struct {
	Ident datom.Keyword
}

func (e *UnrecognizedIdent) Error() string {
	return fmt.Sprintf("unrecognized ident %s", e.Ident)
}
