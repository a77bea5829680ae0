package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

func noFlags(datom.Entid) byte { return 0 }

func TestAppendLogAndReadBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx1 := datom.Entid(0x10000000)
	tx2 := datom.Entid(0x10000001)
	first := []datom.Datom{
		{E: 100, A: 10, V: datom.String("alice"), Tx: tx1, Added: true},
		{E: 100, A: 11, V: datom.Long(30), Tx: tx1, Added: true},
	}
	second := []datom.Datom{
		{E: 100, A: 11, V: datom.Long(30), Tx: tx2, Added: false},
		{E: 100, A: 11, V: datom.Long(31), Tx: tx2, Added: true},
	}
	require.NoError(t, AppendLog(ctx, s.DB(), first))
	require.NoError(t, AppendLog(ctx, s.DB(), second))

	got, err := ReadTransaction(ctx, s.DB(), tx1)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	log, err := ReadLog(ctx, s.DB())
	require.NoError(t, err)
	require.Len(t, log, 4)
	// Log order is by transaction.
	assert.Equal(t, tx1, log[0].Tx)
	assert.Equal(t, tx2, log[2].Tx)
}

func TestInsertAndDeleteDatoms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ds := []datom.Datom{
		{E: 100, A: 10, V: datom.String("alice"), Tx: 1, Added: true},
		{E: 101, A: 10, V: datom.String("bob"), Tx: 1, Added: true},
	}
	require.NoError(t, InsertDatoms(ctx, s.DB(), ds, noFlags))

	got, err := ReadDatoms(ctx, s.DB())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, DeleteDatoms(ctx, s.DB(), ds[:1]))
	got, err = ReadDatoms(ctx, s.DB())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, datom.Entid(101), got[0].E)
}

func TestInsertDatomsChunksLargeBatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// More rows than fit in one statement at 9 binds per row.
	var ds []datom.Datom
	for i := 0; i < 500; i++ {
		ds = append(ds, datom.Datom{E: datom.Entid(1000 + i), A: 10, V: datom.Long(int64(i)), Tx: 1, Added: true})
	}
	require.NoError(t, InsertDatoms(ctx, s.DB(), ds, noFlags))

	got, err := ReadDatoms(ctx, s.DB())
	require.NoError(t, err)
	assert.Len(t, got, 500)
}

func TestExistsExactAndValuesForEA(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ds := []datom.Datom{
		{E: 100, A: 12, V: datom.Long(1), Tx: 1, Added: true},
		{E: 100, A: 12, V: datom.Long(2), Tx: 1, Added: true},
	}
	require.NoError(t, InsertDatoms(ctx, s.DB(), ds, noFlags))

	ok, err := ExistsExact(ctx, s.DB(), 100, 12, datom.Long(1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ExistsExact(ctx, s.DB(), 100, 12, datom.Long(3))
	require.NoError(t, err)
	assert.False(t, ok)

	vs, err := ValuesForEA(ctx, s.DB(), 100, 12)
	require.NoError(t, err)
	assert.Equal(t, []datom.TypedValue{datom.Long(1), datom.Long(2)}, vs)
}

func TestResolveAVPairs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	avet := func(datom.Entid) byte { return datom.FlagIndexAVET }
	ds := []datom.Datom{
		{E: 100, A: 10, V: datom.String("alice"), Tx: 1, Added: true},
		{E: 101, A: 10, V: datom.String("bob"), Tx: 1, Added: true},
	}
	require.NoError(t, InsertDatoms(ctx, s.DB(), ds, avet))

	pairs := []AVPair{
		{A: 10, V: datom.String("alice")},
		{A: 10, V: datom.String("carol")},
		{A: 10, V: datom.String("bob")},
	}
	resolved, err := ResolveAVPairs(ctx, s.DB(), pairs)
	require.NoError(t, err)

	assert.Equal(t, map[int]datom.Entid{0: 100, 2: 101}, resolved)
}
