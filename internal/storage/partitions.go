package storage

import (
	"context"
	"fmt"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/partition"
)

// InsertPartitions writes the partition table rows. Used once, at
// bootstrap.
func InsertPartitions(ctx context.Context, db DBTX, parts partition.Map) error {
	for name, p := range parts {
		allow := 0
		if p.AllowExcision {
			allow = 1
		}
		_, err := db.ExecContext(ctx,
			`INSERT INTO known_parts (part, start, "end", idx, allow_excision) VALUES (?, ?, ?, ?, ?)`,
			name, int64(p.Start), int64(p.End), int64(p.Next), allow)
		if err != nil {
			return fmt.Errorf("failed to insert partition %s: %w", name, err)
		}
	}
	return nil
}

// UpdatePartitionNext persists the next-free pointer of each
// partition that advanced during a transaction.
func UpdatePartitionNext(ctx context.Context, db DBTX, parts partition.Map) error {
	for name, p := range parts {
		_, err := db.ExecContext(ctx,
			"UPDATE known_parts SET idx = ? WHERE part = ?",
			int64(p.Next), name)
		if err != nil {
			return fmt.Errorf("failed to update partition %s: %w", name, err)
		}
	}
	return nil
}

// ReadPartitionMap loads the partition table.
func ReadPartitionMap(ctx context.Context, db DBTX) (partition.Map, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT part, start, "end", idx, allow_excision FROM known_parts`)
	if err != nil {
		return nil, fmt.Errorf("failed to read partitions: %w", err)
	}
	defer rows.Close()

	parts := make(partition.Map)
	for rows.Next() {
		var name string
		var start, end, next int64
		var allow int
		if err := rows.Scan(&name, &start, &end, &next, &allow); err != nil {
			return nil, fmt.Errorf("failed to scan partition: %w", err)
		}
		parts[name] = partition.New(datom.Entid(start), datom.Entid(end), datom.Entid(next), allow != 0)
	}
	return parts, rows.Err()
}
