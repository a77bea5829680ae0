package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/schema"
	"github.com/CavHack/EinsteinDB/internal/transact"
)

// testSchema declares one attribute per value type so the loader's
// conversions can be exercised without a live store.
func testSchema(t *testing.T) *schema.Schema {
	t.Helper()

	base := datom.Entid(0x10000)
	idents := map[datom.Keyword]datom.Entid{
		"test/string":  base,
		"test/long":    base + 1,
		"test/double":  base + 2,
		"test/boolean": base + 3,
		"test/keyword": base + 4,
		"test/instant": base + 5,
		"test/uuid":    base + 6,
		"test/ref":     base + 7,
	}
	attrs := map[datom.Entid]schema.Attribute{
		base:     {ValueType: datom.ValueTypeString},
		base + 1: {ValueType: datom.ValueTypeLong},
		base + 2: {ValueType: datom.ValueTypeDouble},
		base + 3: {ValueType: datom.ValueTypeBoolean},
		base + 4: {ValueType: datom.ValueTypeKeyword},
		base + 5: {ValueType: datom.ValueTypeInstant},
		base + 6: {ValueType: datom.ValueTypeUUID},
		base + 7: {ValueType: datom.ValueTypeRef},
	}
	s, err := schema.New(idents, attrs)
	require.NoError(t, err)
	return s
}

func writeFactFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "facts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFactsConvertsEntries(t *testing.T) {
	path := writeFactFile(t, `
facts:
  - e: alice
    a: :test/string
    v: "Alice"
  - e: alice
    a: :test/long
    v: 42
  - e: alice
    a: :test/double
    v: 2.5
  - e: alice
    a: :test/boolean
    v: true
  - e: alice
    a: :test/keyword
    v: ":tag/vip"
  - e: alice
    a: :test/instant
    v: "2026-01-02T03:04:05Z"
  - e: alice
    a: :test/uuid
    v: "4cb3e9e5-0000-4000-8000-000000000001"
  - e: alice
    a: :test/ref
    v: bob
  - retract: true
    e: 65536
    a: :test/string
    v: "old"
`)

	facts, err := LoadFacts(path, testSchema(t))
	require.NoError(t, err)
	require.Len(t, facts, 9)

	u := uuid.MustParse("4cb3e9e5-0000-4000-8000-000000000001")
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, transact.Assert(transact.Tempid("alice"), transact.IdentRef("test/string"), transact.Literal(datom.String("Alice"))), facts[0])
	assert.Equal(t, transact.Assert(transact.Tempid("alice"), transact.IdentRef("test/long"), transact.Literal(datom.Long(42))), facts[1])
	assert.Equal(t, transact.Assert(transact.Tempid("alice"), transact.IdentRef("test/double"), transact.Literal(datom.Double(2.5))), facts[2])
	assert.Equal(t, transact.Assert(transact.Tempid("alice"), transact.IdentRef("test/boolean"), transact.Literal(datom.Boolean(true))), facts[3])
	assert.Equal(t, transact.Assert(transact.Tempid("alice"), transact.IdentRef("test/keyword"), transact.Literal(datom.Keyword("tag/vip"))), facts[4])
	assert.Equal(t, transact.Assert(transact.Tempid("alice"), transact.IdentRef("test/instant"), transact.Literal(datom.NewInstant(ts))), facts[5])
	assert.Equal(t, transact.Assert(transact.Tempid("alice"), transact.IdentRef("test/uuid"), transact.Literal(datom.UUID(u))), facts[6])
	assert.Equal(t, transact.Assert(transact.Tempid("alice"), transact.IdentRef("test/ref"), transact.Tempid("bob")), facts[7])
	assert.Equal(t, transact.Retract(transact.EntidRef(65536), transact.IdentRef("test/string"), transact.Literal(datom.String("old"))), facts[8])
}

func TestLoadFactsRefValueForms(t *testing.T) {
	path := writeFactFile(t, `
facts:
  - e: alice
    a: :test/ref
    v: 65537
  - e: alice
    a: :test/ref
    v: ":test/string"
`)

	facts, err := LoadFacts(path, testSchema(t))
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, transact.EntidRef(65537), facts[0].V)
	assert.Equal(t, transact.IdentRef("test/string"), facts[1].V)
}

func TestLoadFactsMissingFile(t *testing.T) {
	_, err := LoadFacts(filepath.Join(t.TempDir(), "nope.yaml"), testSchema(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading fact file")
}

func TestLoadFactsEmptyFile(t *testing.T) {
	path := writeFactFile(t, "facts: []\n")
	_, err := LoadFacts(path, testSchema(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains no facts")
}

func TestLoadFactsUnknownAttribute(t *testing.T) {
	path := writeFactFile(t, `
facts:
  - e: alice
    a: :test/missing
    v: "x"
`)
	_, err := LoadFacts(path, testSchema(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown attribute")
}

func TestLoadFactsTempidAttributeRejected(t *testing.T) {
	path := writeFactFile(t, `
facts:
  - e: alice
    a: someTempid
    v: "x"
`)
	_, err := LoadFacts(path, testSchema(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attribute cannot be a tempid")
}

func TestLoadFactsValueMismatch(t *testing.T) {
	cases := map[string]string{
		"string for long": `
facts:
  - e: alice
    a: :test/long
    v: "not a number"
`,
		"missing keyword colon": `
facts:
  - e: alice
    a: :test/keyword
    v: "tag/vip"
`,
		"bad instant": `
facts:
  - e: alice
    a: :test/instant
    v: "yesterday"
`,
		"bad uuid": `
facts:
  - e: alice
    a: :test/uuid
    v: "not-a-uuid"
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFacts(writeFactFile(t, content), testSchema(t))
			require.Error(t, err)
		})
	}
}
