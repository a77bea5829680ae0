// Package harness holds golden-file helpers shared by tests across
// packages.
package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// AssertGoldenDatoms renders datoms one per line in storage encoding
// and compares the dump against testdata/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test -update
//
// The rendering is deterministic: callers pass datoms in a stable
// order and drive the store with a fixed clock.
func AssertGoldenDatoms(t *testing.T, name string, ds []datom.Datom) {
	t.Helper()

	var b strings.Builder
	for _, d := range ds {
		op := "+"
		if !d.Added {
			op = "-"
		}
		v, tag := datom.ToSQLValue(d.V)
		fmt.Fprintf(&b, "%s %d %d %v %d tx=%d\n", op, int64(d.E), int64(d.A), v, tag, int64(d.Tx))
	}

	g := goldie.New(t)
	g.Assert(t, name, []byte(b.String()))
}
