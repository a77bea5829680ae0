package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/schema"
)

func readView(ctx context.Context, db DBTX, table string) ([]datom.Datom, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT e, a, v, value_type_tag FROM "+table+" ORDER BY e, a, value_type_tag, v")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s view: %w", table, err)
	}
	defer rows.Close()

	var out []datom.Datom
	for rows.Next() {
		var e, a int64
		var v any
		var tag int
		if err := rows.Scan(&e, &a, &v, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		tv, err := datom.FromSQLValue(v, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, datom.Datom{E: datom.Entid(e), A: datom.Entid(a), V: tv, Added: true})
	}
	return out, rows.Err()
}

// ReadIdentMap loads keyword-to-entid bindings from the idents view.
func ReadIdentMap(ctx context.Context, db DBTX) (map[datom.Keyword]datom.Entid, error) {
	ds, err := readView(ctx, db, "idents")
	if err != nil {
		return nil, err
	}
	idents := make(map[datom.Keyword]datom.Entid, len(ds))
	for _, d := range ds {
		kw, ok := d.V.(datom.Keyword)
		if !ok {
			return nil, fmt.Errorf("ident binding for entid %d is not a keyword", d.E)
		}
		idents[kw] = d.E
	}
	return idents, nil
}

// ReadAttributeMap loads attribute definitions from the schema view.
func ReadAttributeMap(ctx context.Context, db DBTX, idents map[datom.Keyword]datom.Entid) (map[datom.Entid]schema.Attribute, error) {
	ds, err := readView(ctx, db, "schema")
	if err != nil {
		return nil, err
	}

	byEntid := make(map[datom.Entid]string, len(idents))
	for kw, e := range idents {
		byEntid[e] = kw.String()
	}
	ident := func(e datom.Entid) string {
		if s, ok := byEntid[e]; ok {
			return s
		}
		return strconv.FormatInt(int64(e), 10)
	}

	attrs := make(map[datom.Entid]schema.Attribute)
	if _, err := schema.UpdateAttributeMap(attrs, ds, ident); err != nil {
		return nil, fmt.Errorf("stored schema view is inconsistent: %w", err)
	}
	return attrs, nil
}

// ReadSchema loads the full schema snapshot from the materialized
// views.
func ReadSchema(ctx context.Context, db DBTX) (*schema.Schema, error) {
	idents, err := ReadIdentMap(ctx, db)
	if err != nil {
		return nil, err
	}
	attrs, err := ReadAttributeMap(ctx, db, idents)
	if err != nil {
		return nil, err
	}
	s, err := schema.New(idents, attrs)
	if err != nil {
		return nil, fmt.Errorf("stored schema view is inconsistent: %w", err)
	}
	return s, nil
}
