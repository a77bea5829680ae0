package transact

import (
	"context"
	"fmt"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/schema"
	"github.com/CavHack/EinsteinDB/internal/storage"
)

// bootstrap initializes a fresh database: table layout, the built-in
// partitions, and the core schema committed as the first transaction
// through the ordinary pipeline. Everything happens in one SQL
// transaction, so a crash leaves the file empty and re-openable.
func (c *Conn) bootstrap(ctx context.Context) (*TxReport, error) {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := storage.EnsureLayout(ctx, tx); err != nil {
		return nil, err
	}
	parts := schema.BootstrapPartitionMap()
	if err := storage.InsertPartitions(ctx, tx, parts); err != nil {
		return nil, err
	}

	// The bootstrap schema resolves the symbolic assertions; the
	// ident and attribute maps start empty so the committed facts
	// alone rebuild the schema.
	base := commitBase{
		resolve: schema.Bootstrap(),
		idents:  make(map[datom.Keyword]datom.Entid),
		attrs:   make(map[datom.Entid]schema.Attribute),
		parts:   parts,
	}

	report, next, err := c.run(ctx, tx, bootstrapFacts(), base)
	if err != nil {
		return nil, err
	}
	if !next.schema.Equal(schema.Bootstrap()) {
		return nil, fmt.Errorf("bootstrap transaction did not reproduce the core schema")
	}
	if err := storage.SetUserVersion(ctx, tx, storage.CurrentSchemaVersion); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bootstrap: %w", err)
	}

	c.mu.Lock()
	c.schema = next.schema
	c.parts = next.parts
	c.mu.Unlock()
	return report, nil
}

func bootstrapFacts() []Fact {
	assertions := schema.BootstrapAssertions()
	facts := make([]Fact, 0, len(assertions))
	for _, a := range assertions {
		facts = append(facts, Assert(IdentRef(a.E), IdentRef(a.A), Literal(a.V)))
	}
	return facts
}
