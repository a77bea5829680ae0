package transact

import (
	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/schema"
)

// TxReport describes a committed transaction.
type TxReport struct {
	// TxID is the transaction's entity id, drawn from the tx
	// partition. Ids increase strictly across commits.
	TxID datom.Entid

	// TxInstant is the wall-clock stamp recorded on the transaction
	// entity.
	TxInstant datom.Instant

	// Tempids maps every tempid in the input to the entity it
	// resolved to.
	Tempids map[string]datom.Entid

	// Metadata describes schema changes the transaction made, if any.
	Metadata schema.MetadataReport
}
