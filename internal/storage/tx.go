package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// AppendLog appends the given datoms to the transactions table. The
// log is append-only; rows written here are never updated or deleted.
func AppendLog(ctx context.Context, db DBTX, datoms []datom.Datom) error {
	const varsPerRow = 6
	offset := 0
	for _, n := range chunkRows(len(datoms), varsPerRow) {
		chunk := datoms[offset : offset+n]
		offset += n

		args := make([]any, 0, n*varsPerRow)
		for _, d := range chunk {
			v, tag := datom.ToSQLValue(d.V)
			added := 0
			if d.Added {
				added = 1
			}
			args = append(args, int64(d.E), int64(d.A), v, int64(d.Tx), added, tag)
		}

		query := "INSERT INTO transactions (e, a, v, tx, added, value_type_tag) VALUES " +
			repeatValues(n, varsPerRow)
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to append to transaction log: %w", err)
		}
	}
	return nil
}

// InsertDatoms adds rows to the current-state projection. flags
// supplies the per-attribute index flag byte used to populate the
// partial index columns.
func InsertDatoms(ctx context.Context, db DBTX, datoms []datom.Datom, flags func(a datom.Entid) byte) error {
	const varsPerRow = 9
	offset := 0
	for _, n := range chunkRows(len(datoms), varsPerRow) {
		chunk := datoms[offset : offset+n]
		offset += n

		args := make([]any, 0, n*varsPerRow)
		for _, d := range chunk {
			v, tag := datom.ToSQLValue(d.V)
			f := flags(d.A)
			args = append(args,
				int64(d.E), int64(d.A), v, int64(d.Tx), tag,
				bit(f, datom.FlagIndexAVET),
				bit(f, datom.FlagIndexVAET),
				bit(f, datom.FlagIndexFulltext),
				bit(f, datom.FlagUniqueValue))
		}

		query := "INSERT INTO datoms (e, a, v, tx, value_type_tag, index_avet, index_vaet, index_fulltext, unique_value) VALUES " +
			repeatValues(n, varsPerRow)
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert datoms: %w", err)
		}
	}
	return nil
}

// DeleteDatoms removes rows from the current-state projection by
// (e, a, value_type_tag, v). The transaction log is untouched.
func DeleteDatoms(ctx context.Context, db DBTX, datoms []datom.Datom) error {
	const varsPerRow = 4
	offset := 0
	for _, n := range chunkRows(len(datoms), varsPerRow) {
		chunk := datoms[offset : offset+n]
		offset += n

		args := make([]any, 0, n*varsPerRow)
		for _, d := range chunk {
			v, tag := datom.ToSQLValue(d.V)
			args = append(args, int64(d.E), int64(d.A), tag, v)
		}

		query := "DELETE FROM datoms WHERE (e, a, value_type_tag, v) IN (VALUES " +
			repeatValues(n, varsPerRow) + ")"
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete datoms: %w", err)
		}
	}
	return nil
}

// ReadTransaction returns the logged datoms of a single transaction,
// ordered for stable output.
func ReadTransaction(ctx context.Context, db DBTX, tx datom.Entid) ([]datom.Datom, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT e, a, v, tx, added, value_type_tag FROM transactions WHERE tx = ? ORDER BY e, a, value_type_tag, v, added",
		int64(tx))
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction: %w", err)
	}
	defer rows.Close()
	return scanLogRows(rows)
}

// ReadLog returns the whole transaction log in tx order.
func ReadLog(ctx context.Context, db DBTX) ([]datom.Datom, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT e, a, v, tx, added, value_type_tag FROM transactions ORDER BY tx, e, a, value_type_tag, v, added")
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}
	defer rows.Close()
	return scanLogRows(rows)
}

// ReadDatoms returns the whole current-state projection, ordered,
// with fulltext references resolved to their text. All rows carry
// Added true.
func ReadDatoms(ctx context.Context, db DBTX) ([]datom.Datom, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT e, a, v, tx, value_type_tag FROM datoms_resolved ORDER BY e, a, value_type_tag, v")
	if err != nil {
		return nil, fmt.Errorf("failed to read datoms: %w", err)
	}
	defer rows.Close()

	var out []datom.Datom
	for rows.Next() {
		var e, a, tx int64
		var v any
		var tag int
		if err := rows.Scan(&e, &a, &v, &tx, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan datom: %w", err)
		}
		tv, err := datom.FromSQLValue(v, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, datom.Datom{E: datom.Entid(e), A: datom.Entid(a), V: tv, Tx: datom.Entid(tx), Added: true})
	}
	return out, rows.Err()
}

func scanLogRows(rows *sql.Rows) ([]datom.Datom, error) {
	var out []datom.Datom
	for rows.Next() {
		var e, a, tx int64
		var v any
		var added, tag int
		if err := rows.Scan(&e, &a, &v, &tx, &added, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		tv, err := datom.FromSQLValue(v, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, datom.Datom{E: datom.Entid(e), A: datom.Entid(a), V: tv, Tx: datom.Entid(tx), Added: added != 0})
	}
	return out, rows.Err()
}

func bit(flags, mask byte) int {
	if flags&mask != 0 {
		return 1
	}
	return 0
}
