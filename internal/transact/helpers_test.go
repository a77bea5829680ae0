package transact

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/testutil"
)

// newTestConn opens a fresh bootstrapped store in a temp directory
// with a deterministic clock: the bootstrap transaction is stamped
// 2026-01-01T00:00:00Z and every later transaction one second after
// the previous.
func newTestConn(t *testing.T) *Conn {
	t.Helper()
	return openTestConn(t, filepath.Join(t.TempDir(), "facts.db"))
}

func openTestConn(t *testing.T, path string) *Conn {
	t.Helper()

	clock := testutil.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	conn, err := Open(context.Background(), path, WithClock(clock.Now), WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// installPersonSchema transacts a small vocabulary used across tests.
func installPersonSchema(t *testing.T, conn *Conn) {
	t.Helper()

	_, err := conn.Transact(context.Background(), []Fact{
		Assert(Tempid("name"), IdentRef("db/ident"), Literal(datom.Keyword("person/name"))),
		Assert(Tempid("name"), IdentRef("db/valueType"), IdentRef("db.type/string")),
		Assert(Tempid("name"), IdentRef("db/cardinality"), IdentRef("db.cardinality/one")),

		Assert(Tempid("email"), IdentRef("db/ident"), Literal(datom.Keyword("person/email"))),
		Assert(Tempid("email"), IdentRef("db/valueType"), IdentRef("db.type/string")),
		Assert(Tempid("email"), IdentRef("db/cardinality"), IdentRef("db.cardinality/one")),
		Assert(Tempid("email"), IdentRef("db/unique"), IdentRef("db.unique/identity")),
		Assert(Tempid("email"), IdentRef("db/index"), Literal(datom.Boolean(true))),

		Assert(Tempid("handle"), IdentRef("db/ident"), Literal(datom.Keyword("person/handle"))),
		Assert(Tempid("handle"), IdentRef("db/valueType"), IdentRef("db.type/string")),
		Assert(Tempid("handle"), IdentRef("db/cardinality"), IdentRef("db.cardinality/one")),
		Assert(Tempid("handle"), IdentRef("db/unique"), IdentRef("db.unique/identity")),
		Assert(Tempid("handle"), IdentRef("db/index"), Literal(datom.Boolean(true))),

		Assert(Tempid("age"), IdentRef("db/ident"), Literal(datom.Keyword("person/age"))),
		Assert(Tempid("age"), IdentRef("db/valueType"), IdentRef("db.type/long")),
		Assert(Tempid("age"), IdentRef("db/cardinality"), IdentRef("db.cardinality/one")),

		Assert(Tempid("aliases"), IdentRef("db/ident"), Literal(datom.Keyword("person/aliases"))),
		Assert(Tempid("aliases"), IdentRef("db/valueType"), IdentRef("db.type/string")),
		Assert(Tempid("aliases"), IdentRef("db/cardinality"), IdentRef("db.cardinality/many")),

		Assert(Tempid("friend"), IdentRef("db/ident"), Literal(datom.Keyword("person/friend"))),
		Assert(Tempid("friend"), IdentRef("db/valueType"), IdentRef("db.type/ref")),
		Assert(Tempid("friend"), IdentRef("db/cardinality"), IdentRef("db.cardinality/many")),

		Assert(Tempid("bio"), IdentRef("db/ident"), Literal(datom.Keyword("person/bio"))),
		Assert(Tempid("bio"), IdentRef("db/valueType"), IdentRef("db.type/string")),
		Assert(Tempid("bio"), IdentRef("db/cardinality"), IdentRef("db.cardinality/one")),
		Assert(Tempid("bio"), IdentRef("db/fulltext"), Literal(datom.Boolean(true))),
		Assert(Tempid("bio"), IdentRef("db/index"), Literal(datom.Boolean(true))),
	})
	require.NoError(t, err)
}

// entityDatoms filters current-state datoms down to one entity.
func entityDatoms(t *testing.T, conn *Conn, e datom.Entid) []datom.Datom {
	t.Helper()

	all, err := conn.ReadDatoms(context.Background())
	require.NoError(t, err)
	var out []datom.Datom
	for _, d := range all {
		if d.E == e {
			out = append(out, d)
		}
	}
	return out
}
