package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

func testMap() Map {
	return Map{
		PartDB:   New(0, 0x10000, 41, false),
		PartUser: New(0x10000, 0x10000000, 0x10000, true),
		PartTx:   New(0x10000000, 1<<40, 0x10000000, false),
	}
}

func TestAllocateAdvancesNext(t *testing.T) {
	m := testMap()

	r := m.Allocate(PartUser, 3)
	assert.Equal(t, datom.Entid(0x10000), r.Start)
	assert.Equal(t, datom.Entid(0x10003), r.End)
	assert.Equal(t, datom.Entid(0x10003), m[PartUser].Next)

	// Subsequent allocations never reuse ids.
	r2 := m.Allocate(PartUser, 1)
	assert.Equal(t, datom.Entid(0x10003), r2.Start)
}

func TestAllocateOneFromTxPartitionIsMonotonic(t *testing.T) {
	m := testMap()

	prev := datom.Entid(0)
	for i := 0; i < 5; i++ {
		id := m.AllocateOne(PartTx)
		assert.Greater(t, id, prev)
		prev = id
	}
	assert.Equal(t, datom.Entid(0x10000000+5), m[PartTx].Next)
}

func TestAllocateUnknownPartitionPanics(t *testing.T) {
	m := testMap()
	assert.Panics(t, func() { m.Allocate("db.part/nope", 1) })
}

func TestAllocateExhaustionPanics(t *testing.T) {
	m := Map{"tiny": New(0, 2, 0, false)}
	m.Allocate("tiny", 2)
	assert.Panics(t, func() { m.Allocate("tiny", 1) })
}

func TestNewValidatesRange(t *testing.T) {
	assert.Panics(t, func() { New(10, 5, 10, false) })
	assert.Panics(t, func() { New(0, 10, 11, false) })
}

func TestCloneIsIndependent(t *testing.T) {
	m := testMap()
	c := m.Clone()

	c.Allocate(PartUser, 10)
	assert.Equal(t, datom.Entid(0x10000), m[PartUser].Next)
	assert.Equal(t, datom.Entid(0x1000a), c[PartUser].Next)
}

func TestContains(t *testing.T) {
	m := testMap()
	require.True(t, m.Contains(0))
	assert.True(t, m.Contains(0x10000))
	assert.True(t, m[PartDB].Contains(40))
	assert.False(t, m[PartDB].Contains(0x10000))
	assert.False(t, m.Contains(-1))
}
