package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// ExistsExact reports whether the current-state projection holds the
// exact (e, a, v) row.
func ExistsExact(ctx context.Context, db DBTX, e, a datom.Entid, v datom.TypedValue) (bool, error) {
	sv, tag := datom.ToSQLValue(v)
	var one int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM datoms WHERE e = ? AND a = ? AND value_type_tag = ? AND v = ? LIMIT 1",
		int64(e), int64(a), tag, sv).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up datom: %w", err)
	}
	return true, nil
}

// ValuesForEA returns every current value asserted for (e, a).
func ValuesForEA(ctx context.Context, db DBTX, e, a datom.Entid) ([]datom.TypedValue, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT v, value_type_tag FROM datoms WHERE e = ? AND a = ? ORDER BY value_type_tag, v",
		int64(e), int64(a))
	if err != nil {
		return nil, fmt.Errorf("failed to look up values: %w", err)
	}
	defer rows.Close()

	var out []datom.TypedValue
	for rows.Next() {
		var v any
		var tag int
		if err := rows.Scan(&v, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		tv, err := datom.FromSQLValue(v, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, tv)
	}
	return out, rows.Err()
}

// AVPair is an (attribute, value) lookup key. Resolution is only
// meaningful for unique attributes, where at most one entity holds
// the value.
type AVPair struct {
	A datom.Entid
	V datom.TypedValue
}

func (p AVPair) key() string {
	return strconv.FormatInt(int64(p.A), 10) + "|" + datom.ValueKey(p.V)
}

// ResolveAVPairs looks up each pair against the AVET index and
// returns, keyed by position in pairs, the entity currently holding
// that value. Unmatched pairs are absent from the result.
func ResolveAVPairs(ctx context.Context, db DBTX, pairs []AVPair) (map[int]datom.Entid, error) {
	resolved := make(map[int]datom.Entid, len(pairs))
	if len(pairs) == 0 {
		return resolved, nil
	}

	byKey := make(map[string][]int, len(pairs))
	for i, p := range pairs {
		byKey[p.key()] = append(byKey[p.key()], i)
	}

	const varsPerRow = 3
	offset := 0
	for _, n := range chunkRows(len(pairs), varsPerRow) {
		chunk := pairs[offset : offset+n]
		offset += n

		args := make([]any, 0, n*varsPerRow)
		for _, p := range chunk {
			v, tag := datom.ToSQLValue(p.V)
			args = append(args, int64(p.A), tag, v)
		}

		// The predicate on index_avet keeps the partial AVET index usable.
		query := "SELECT a, v, value_type_tag, e FROM datoms WHERE index_avet IS NOT 0 AND (a, value_type_tag, v) IN (VALUES " +
			repeatValues(n, varsPerRow) + ")"
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve av pairs: %w", err)
		}

		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var a, e int64
				var v any
				var tag int
				if err := rows.Scan(&a, &v, &tag, &e); err != nil {
					return fmt.Errorf("failed to scan av row: %w", err)
				}
				tv, err := datom.FromSQLValue(v, tag)
				if err != nil {
					return err
				}
				key := AVPair{A: datom.Entid(a), V: tv}.key()
				for _, i := range byKey[key] {
					resolved[i] = datom.Entid(e)
				}
			}
			return rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}

	return resolved, nil
}
