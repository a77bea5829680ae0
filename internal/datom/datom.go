package datom

import "fmt"

// Datom is one (entity, attribute, value, transaction, added) fact.
type Datom struct {
	E     Entid
	A     Entid
	V     TypedValue
	Tx    Entid
	Added bool
}

func (d Datom) String() string {
	op := "add"
	if !d.Added {
		op = "retract"
	}
	return fmt.Sprintf("[%d %d %v %d %s]", d.E, d.A, d.V, d.Tx, op)
}

// Index participation flags, packed into one byte in the search
// pipeline and expanded into per-row booleans when the current-state
// projection is written.
const (
	FlagIndexAVET     byte = 1 << 0
	FlagIndexVAET     byte = 1 << 1
	FlagIndexFulltext byte = 1 << 2
	FlagUniqueValue   byte = 1 << 3
)
