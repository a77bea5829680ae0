package storage

import (
	"context"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// NormalizeFulltext canonicalizes text before interning so that
// equal strings in different Unicode forms dedup to one row.
func NormalizeFulltext(text string) string {
	return norm.NFC.String(text)
}

// InternFulltext inserts each distinct text into fulltext_values,
// reusing existing rows, and returns the rowid for every input.
// Inputs must already be normalized.
func InternFulltext(ctx context.Context, db DBTX, texts []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(texts))
	if len(texts) == 0 {
		return ids, nil
	}

	distinct := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := ids[t]; ok {
			continue
		}
		ids[t] = 0
		distinct = append(distinct, t)
	}

	offset := 0
	for _, n := range chunkRows(len(distinct), 1) {
		chunk := distinct[offset : offset+n]
		offset += n

		args := make([]any, 0, n)
		for _, t := range chunk {
			args = append(args, t)
		}

		insert := "INSERT INTO fulltext_values (text) VALUES " + repeatValues(n, 1) +
			" ON CONFLICT (text) DO NOTHING"
		if _, err := db.ExecContext(ctx, insert, args...); err != nil {
			return nil, fmt.Errorf("failed to intern fulltext values: %w", err)
		}

		query := "SELECT id, text FROM fulltext_values WHERE text IN (" + placeholders(n) + ")"
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to read back fulltext values: %w", err)
		}

		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var id int64
				var text string
				if err := rows.Scan(&id, &text); err != nil {
					return fmt.Errorf("failed to scan fulltext row: %w", err)
				}
				ids[text] = id
			}
			return rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}

	for t, id := range ids {
		if id == 0 {
			return nil, fmt.Errorf("fulltext value %q did not intern", t)
		}
	}
	return ids, nil
}

// LookupFulltext returns the rowid of each text that already has an
// interned row. Texts never interned are absent from the result; no
// rows are inserted.
func LookupFulltext(ctx context.Context, db DBTX, texts []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(texts))
	if len(texts) == 0 {
		return ids, nil
	}

	seen := make(map[string]struct{}, len(texts))
	distinct := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		distinct = append(distinct, t)
	}

	offset := 0
	for _, n := range chunkRows(len(distinct), 1) {
		chunk := distinct[offset : offset+n]
		offset += n

		args := make([]any, 0, n)
		for _, t := range chunk {
			args = append(args, t)
		}

		query := "SELECT id, text FROM fulltext_values WHERE text IN (" + placeholders(n) + ")"
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to look up fulltext values: %w", err)
		}

		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var id int64
				var text string
				if err := rows.Scan(&id, &text); err != nil {
					return fmt.Errorf("failed to scan fulltext row: %w", err)
				}
				ids[text] = id
			}
			return rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
