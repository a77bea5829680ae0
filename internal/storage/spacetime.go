package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/schema"
)

// RecomputeIdents rebuilds the idents materialized view from the
// current-state projection.
func RecomputeIdents(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM idents"); err != nil {
		return fmt.Errorf("failed to clear idents view: %w", err)
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO idents SELECT e, a, v, value_type_tag FROM datoms WHERE a = ?",
		int64(schema.DBIdent))
	if err != nil {
		return fmt.Errorf("failed to rebuild idents view: %w", err)
	}
	return nil
}

// RecomputeSchema rebuilds the schema materialized view: every
// schema-defining datom of every entity that declares a value type.
func RecomputeSchema(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM schema"); err != nil {
		return fmt.Errorf("failed to clear schema view: %w", err)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO schema
		SELECT d.e, d.a, d.v, d.value_type_tag
		FROM datoms d
		WHERE d.e IN (SELECT e FROM datoms WHERE a = ?)
		AND d.a IN (?, ?, ?, ?, ?, ?, ?)`,
		int64(schema.DBValueType),
		int64(schema.DBValueType), int64(schema.DBCardinality), int64(schema.DBUnique),
		int64(schema.DBIndex), int64(schema.DBFulltext), int64(schema.DBIsComponent),
		int64(schema.DBNoHistory))
	if err != nil {
		return fmt.Errorf("failed to rebuild schema view: %w", err)
	}
	return nil
}

// UpdateIndexFlags rewrites the partial index columns of every
// current-state row of the given attribute. Called after an
// alteration changes the attribute's indexing or uniqueness.
func UpdateIndexFlags(ctx context.Context, db DBTX, a datom.Entid, flags byte) error {
	_, err := db.ExecContext(ctx,
		"UPDATE datoms SET index_avet = ?, index_vaet = ?, index_fulltext = ?, unique_value = ? WHERE a = ?",
		bit(flags, datom.FlagIndexAVET),
		bit(flags, datom.FlagIndexVAET),
		bit(flags, datom.FlagIndexFulltext),
		bit(flags, datom.FlagUniqueValue),
		int64(a))
	if err != nil {
		return fmt.Errorf("failed to update index flags: %w", err)
	}
	return nil
}

// HasDuplicateEAValues reports whether any entity currently holds
// more than one value of the attribute. Gates altering cardinality
// from many to one.
func HasDuplicateEAValues(ctx context.Context, db DBTX, a datom.Entid) (bool, error) {
	var e int64
	err := db.QueryRowContext(ctx,
		"SELECT e FROM datoms WHERE a = ? GROUP BY e HAVING COUNT(*) > 1 LIMIT 1",
		int64(a)).Scan(&e)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check attribute cardinality: %w", err)
	}
	return true, nil
}

// HasSharedAVValues reports whether any value of the attribute is
// currently held by more than one entity. Gates adding a uniqueness
// constraint.
func HasSharedAVValues(ctx context.Context, db DBTX, a datom.Entid) (bool, error) {
	var v any
	err := db.QueryRowContext(ctx,
		"SELECT v FROM datoms WHERE a = ? GROUP BY value_type_tag, v HAVING COUNT(*) > 1 LIMIT 1",
		int64(a)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check attribute uniqueness: %w", err)
	}
	return true, nil
}
