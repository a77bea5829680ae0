package transact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

func fulltextRowCount(t *testing.T, conn *Conn) int {
	t.Helper()

	var n int
	row := conn.store.DB().QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM fulltext_values")
	require.NoError(t, row.Scan(&n))
	return n
}

func TestFulltextValuesAreInterned(t *testing.T) {
	conn := newTestConn(t)
	installPersonSchema(t, conn)
	ctx := context.Background()

	const bio = "Pioneer of computing."
	report, err := conn.Transact(ctx, []Fact{
		Assert(Tempid("a"), IdentRef("person/bio"), Literal(datom.String(bio))),
	})
	require.NoError(t, err)
	require.Equal(t, 1, fulltextRowCount(t, conn))

	// A second entity with the same text shares the interned row.
	next, err := conn.Transact(ctx, []Fact{
		Assert(Tempid("b"), IdentRef("person/bio"), Literal(datom.String(bio))),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fulltextRowCount(t, conn))

	// Reads resolve the reference back to the text.
	bioAttr, _ := conn.Schema().EntidForIdent("person/bio")
	for _, e := range []datom.Entid{report.Tempids["a"], next.Tempids["b"]} {
		ds := entityDatoms(t, conn, e)
		require.Len(t, ds, 1)
		assert.Equal(t, bioAttr, ds[0].A)
		assert.Equal(t, datom.String(bio), ds[0].V)
	}

	// The log carries the interned reference, and both transactions
	// point at the same row.
	first, err := conn.ReadTransaction(ctx, report.TxID)
	require.NoError(t, err)
	second, err := conn.ReadTransaction(ctx, next.TxID)
	require.NoError(t, err)
	var ids []datom.FulltextID
	for _, d := range append(first, second...) {
		if d.A == bioAttr {
			ids = append(ids, d.V.(datom.FulltextID))
		}
	}
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
}

func TestFulltextNormalization(t *testing.T) {
	conn := newTestConn(t)
	installPersonSchema(t, conn)
	ctx := context.Background()

	composed := "café"    // é
	decomposed := "café" // e + combining acute

	report, err := conn.Transact(ctx, []Fact{
		Assert(Tempid("p"), IdentRef("person/bio"), Literal(datom.String(composed))),
	})
	require.NoError(t, err)
	p := report.Tempids["p"]

	// The decomposed spelling normalizes to the stored value, so the
	// assertion is a no-op.
	again, err := conn.Transact(ctx, []Fact{
		Assert(EntidRef(p), IdentRef("person/bio"), Literal(datom.String(decomposed))),
	})
	require.NoError(t, err)

	logged, err := conn.ReadTransaction(ctx, again.TxID)
	require.NoError(t, err)
	assert.Len(t, logged, 1)
	assert.Equal(t, 1, fulltextRowCount(t, conn))

	ds := entityDatoms(t, conn, p)
	require.Len(t, ds, 1)
	assert.Equal(t, datom.String(composed), ds[0].V)
}

func TestFulltextRetractionKeepsInternedRow(t *testing.T) {
	conn := newTestConn(t)
	installPersonSchema(t, conn)
	ctx := context.Background()

	const bio = "Short bio."
	report, err := conn.Transact(ctx, []Fact{
		Assert(Tempid("p"), IdentRef("person/bio"), Literal(datom.String(bio))),
	})
	require.NoError(t, err)
	p := report.Tempids["p"]

	_, err = conn.Transact(ctx, []Fact{
		Retract(EntidRef(p), IdentRef("person/bio"), Literal(datom.String(bio))),
	})
	require.NoError(t, err)

	assert.Empty(t, entityDatoms(t, conn, p))
	// Interned text stays: the log still references it.
	assert.Equal(t, 1, fulltextRowCount(t, conn))
}

func TestFulltextRetractionOfUnknownTextInternsNothing(t *testing.T) {
	conn := newTestConn(t)
	installPersonSchema(t, conn)
	ctx := context.Background()

	seed, err := conn.Transact(ctx, []Fact{
		Assert(Tempid("p"), IdentRef("person/name"), Literal(datom.String("Grace"))),
	})
	require.NoError(t, err)
	p := seed.Tempids["p"]

	// Retracting text that was never stored is a no-op and must not
	// leave a row behind in fulltext_values.
	report, err := conn.Transact(ctx, []Fact{
		Retract(EntidRef(p), IdentRef("person/bio"), Literal(datom.String("never stored"))),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, fulltextRowCount(t, conn))

	logged, err := conn.ReadTransaction(ctx, report.TxID)
	require.NoError(t, err)
	assert.Len(t, logged, 1) // txInstant only
}
