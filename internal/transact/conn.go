package transact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/partition"
	"github.com/CavHack/EinsteinDB/internal/schema"
	"github.com/CavHack/EinsteinDB/internal/storage"
)

// Conn is a connection to a fact store. It owns the storage handle
// and the in-memory snapshots of the schema and partition map, which
// always describe the last committed state.
//
// Thread-safety: Conn is safe for concurrent use. Commits are
// serialized; readers see the snapshot of the last commit.
type Conn struct {
	store *storage.Store
	log   *slog.Logger
	clock func() time.Time

	// mu serializes commits and guards the snapshots. Snapshots are
	// replaced wholesale after a successful commit, never mutated.
	mu     sync.Mutex
	schema *schema.Schema
	parts  partition.Map
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Conn) { c.log = log }
}

// WithClock sets the wall-clock source used to stamp transactions.
// Used by tests for deterministic instants.
func WithClock(now func() time.Time) Option {
	return func(c *Conn) { c.clock = now }
}

// Open opens the store at path, bootstrapping it on first use.
//
// A fresh database gets its table layout, the three built-in
// partitions, and the core schema, written through the ordinary
// commit path as the first transaction. An existing database has its
// schema and partition map read back from the materialized views.
func Open(ctx context.Context, path string, opts ...Option) (*Conn, error) {
	st, err := storage.Open(path)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		store: st,
		log:   slog.Default(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initialize(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return c, nil
}

func (c *Conn) initialize(ctx context.Context) error {
	db := c.store.DB()
	version, err := storage.UserVersion(ctx, db)
	if err != nil {
		return err
	}

	switch version {
	case 0:
		report, err := c.bootstrap(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap failed: %w", err)
		}
		c.log.Info("store bootstrapped",
			"tx", int64(report.TxID),
			"attributes", len(report.Metadata.AttributesInstalled))
		return nil
	case storage.CurrentSchemaVersion:
		parts, err := storage.ReadPartitionMap(ctx, db)
		if err != nil {
			return err
		}
		s, err := storage.ReadSchema(ctx, db)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.parts = parts
		c.schema = s
		c.mu.Unlock()
		return nil
	default:
		return fmt.Errorf("unsupported store version %d (want %d)", version, storage.CurrentSchemaVersion)
	}
}

// Close closes the underlying store.
func (c *Conn) Close() error {
	return c.store.Close()
}

// Schema returns the schema snapshot of the last committed
// transaction. The snapshot is immutable.
func (c *Conn) Schema() *schema.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema
}

// PartitionMap returns a copy of the partition map as of the last
// committed transaction.
func (c *Conn) PartitionMap() partition.Map {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parts.Clone()
}

// Transact atomically applies facts and returns a report. On any
// rejection the store is unchanged and the error describes the first
// violation found.
func (c *Conn) Transact(ctx context.Context, facts []Fact) (*TxReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	base := commitBase{
		resolve: c.schema,
		idents:  c.schema.IdentMap(),
		attrs:   c.schema.AttributeMap(),
		parts:   c.parts,
	}

	report, next, err := c.commit(ctx, facts, base)
	if err != nil {
		return nil, err
	}

	c.schema = next.schema
	c.parts = next.parts

	c.log.Debug("transaction committed",
		"tx", int64(report.TxID),
		"tempids", len(report.Tempids),
		"schemaChanged", report.Metadata.AttributesDidChange())
	return report, nil
}

// ReadTransaction returns the logged datoms of one transaction.
func (c *Conn) ReadTransaction(ctx context.Context, tx datom.Entid) ([]datom.Datom, error) {
	return storage.ReadTransaction(ctx, c.store.DB(), tx)
}

// ReadLog returns the whole transaction log in commit order.
func (c *Conn) ReadLog(ctx context.Context) ([]datom.Datom, error) {
	return storage.ReadLog(ctx, c.store.DB())
}

// ReadDatoms returns the current state of the store.
func (c *Conn) ReadDatoms(ctx context.Context) ([]datom.Datom, error) {
	return storage.ReadDatoms(ctx, c.store.DB())
}
