package transact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// TxError represents a rejected transaction.
//
// Rejections include:
//   - Type disagreement: a value does not match the attribute's type
//   - Cardinality conflict: several values for a cardinality-one attribute
//   - Add/retract conflict: the same datom asserted and retracted at once
//   - Conflicting upserts: one tempid resolved to several entities
//   - Unique conflict: a unique value already belongs to another entity
//   - Unallocated entid: a fact references an id never issued
//
// A rejected transaction writes nothing; the store is unchanged.
type TxError struct {
	// Code identifies the rejection category.
	Code TxErrorCode

	// Message is a human-readable description.
	Message string

	// Entity is the affected entity, when known.
	Entity int64

	// Attribute is the affected attribute, when known.
	Attribute int64

	// Tempid is the affected tempid (for upsert conflicts).
	Tempid string

	// Entids lists the entities involved (for upsert conflicts).
	Entids []int64

	// Values lists the conflicting values (for cardinality and
	// add/retract conflicts).
	Values []datom.TypedValue
}

// TxErrorCode categorizes transaction rejections.
type TxErrorCode string

const (
	// ErrCodeTypeDisagreement indicates a value of the wrong type.
	ErrCodeTypeDisagreement TxErrorCode = "TYPE_DISAGREEMENT"

	// ErrCodeCardinalityConflict indicates multiple values for a
	// cardinality-one attribute in one transaction.
	ErrCodeCardinalityConflict TxErrorCode = "CARDINALITY_CONFLICT"

	// ErrCodeAddRetractConflict indicates the same datom was both
	// asserted and retracted in one transaction.
	ErrCodeAddRetractConflict TxErrorCode = "ADD_RETRACT_CONFLICT"

	// ErrCodeConflictingUpserts indicates a tempid matched more than
	// one existing entity through unique-identity attributes.
	ErrCodeConflictingUpserts TxErrorCode = "CONFLICTING_UPSERTS"

	// ErrCodeUniqueConflict indicates a unique value is already held
	// by a different entity.
	ErrCodeUniqueConflict TxErrorCode = "UNIQUE_CONFLICT"

	// ErrCodeUnallocatedEntid indicates a reference to an id that no
	// partition has issued.
	ErrCodeUnallocatedEntid TxErrorCode = "UNALLOCATED_ENTID"

	// ErrCodeUnrecognizedReference indicates an ident or tempid that
	// could not be resolved to an entity.
	ErrCodeUnrecognizedReference TxErrorCode = "UNRECOGNIZED_REFERENCE"
)

// Error implements the error interface.
func (e *TxError) Error() string {
	msg := e.Message
	if len(e.Values) > 0 {
		rendered := make([]string, len(e.Values))
		for i, v := range e.Values {
			rendered[i] = fmt.Sprintf("%v", v)
		}
		msg = fmt.Sprintf("%s (values: %s)", msg, strings.Join(rendered, ", "))
	}

	switch {
	case e.Tempid != "":
		return fmt.Sprintf("%s: %s (tempid=%q)", e.Code, msg, e.Tempid)
	case e.Entity != 0 && e.Attribute != 0:
		return fmt.Sprintf("%s: %s (e=%d, a=%d)", e.Code, msg, e.Entity, e.Attribute)
	case e.Attribute != 0:
		return fmt.Sprintf("%s: %s (a=%d)", e.Code, msg, e.Attribute)
	case e.Entity != 0:
		return fmt.Sprintf("%s: %s (e=%d)", e.Code, msg, e.Entity)
	default:
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
}

// ErrorCode extracts the TxErrorCode from err, unwrapping as needed.
// Returns "" if err is not a TxError.
func ErrorCode(err error) TxErrorCode {
	var te *TxError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsTypeDisagreement returns true for type disagreement rejections.
func IsTypeDisagreement(err error) bool {
	return ErrorCode(err) == ErrCodeTypeDisagreement
}

// IsCardinalityConflict returns true for cardinality-one conflicts.
func IsCardinalityConflict(err error) bool {
	return ErrorCode(err) == ErrCodeCardinalityConflict
}

// IsAddRetractConflict returns true for add/retract conflicts.
func IsAddRetractConflict(err error) bool {
	return ErrorCode(err) == ErrCodeAddRetractConflict
}

// IsConflictingUpserts returns true for conflicting upsert rejections.
func IsConflictingUpserts(err error) bool {
	return ErrorCode(err) == ErrCodeConflictingUpserts
}

// IsUniqueConflict returns true for unique value conflicts.
func IsUniqueConflict(err error) bool {
	return ErrorCode(err) == ErrCodeUniqueConflict
}

// IsUnallocatedEntid returns true for unallocated entid rejections.
func IsUnallocatedEntid(err error) bool {
	return ErrorCode(err) == ErrCodeUnallocatedEntid
}

// IsUnrecognizedReference returns true for unresolved ident or tempid
// rejections.
func IsUnrecognizedReference(err error) bool {
	return ErrorCode(err) == ErrCodeUnrecognizedReference
}
