// Package partition issues fresh, non-reused entity ids from named,
// contiguous id ranges. The transaction partition doubles as a logical
// clock: each commit consumes exactly one id from it, strictly greater
// than every id issued before.
package partition

import (
	"fmt"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// Well-known partition names installed at bootstrap.
const (
	PartDB   = "db.part/db"
	PartUser = "db.part/user"
	PartTx   = "db.part/tx"
)

// Partition is a named [Start, End) range of entity ids with a
// next-free pointer. Invariant: Start <= Next <= End.
type Partition struct {
	Start         datom.Entid
	End           datom.Entid
	Next          datom.Entid
	AllowExcision bool
}

// New builds a partition, panicking if the invariant does not hold.
// Callers construct partitions from trusted bootstrap data or from
// rows this package wrote, so a violation is a programmer error.
func New(start, end, next datom.Entid, allowExcision bool) Partition {
	p := Partition{Start: start, End: end, Next: next, AllowExcision: allowExcision}
	if !p.valid() {
		panic(fmt.Sprintf("partition: invalid range start=%d next=%d end=%d", start, next, end))
	}
	return p
}

func (p Partition) valid() bool {
	return p.Start <= p.Next && p.Next <= p.End
}

// Contains reports whether id falls inside [Start, End).
func (p Partition) Contains(id datom.Entid) bool {
	return p.Start <= id && id < p.End
}

// Range is a contiguous [Start, End) run of issued ids.
type Range struct {
	Start datom.Entid
	End   datom.Entid
}

// Map holds the known partitions keyed by name. It is a working copy:
// the coordinator clones it per commit and swaps the clone in only
// after a successful commit.
type Map map[string]Partition

// Clone returns an independent copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for name, p := range m {
		out[name] = p
	}
	return out
}

// Allocate advances the named partition's next-free pointer by n and
// returns the issued range. An unknown partition name is a programmer
// error, not a recoverable condition, and panics.
func (m Map) Allocate(part string, n int) Range {
	p, ok := m[part]
	if !ok {
		panic(fmt.Sprintf("partition: cannot allocate from unknown partition %q", part))
	}
	r := Range{Start: p.Next, End: p.Next + datom.Entid(n)}
	p.Next = r.End
	if !p.valid() {
		panic(fmt.Sprintf("partition: %q exhausted allocating %d ids", part, n))
	}
	m[part] = p
	return r
}

// AllocateOne allocates a single id.
func (m Map) AllocateOne(part string) datom.Entid {
	return m.Allocate(part, 1).Start
}

// Contains reports whether any known partition contains id. Used for
// validation and debugging, not on the commit hot path.
func (m Map) Contains(id datom.Entid) bool {
	for _, p := range m {
		if p.Contains(id) {
			return true
		}
	}
	return false
}
