package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against a store and returns its
// combined output.
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append(args, "--db", dbPath))
	err := cmd.Execute()
	return buf.String(), err
}

func TestInitCreatesStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "facts.db")

	out, err := execute(t, dbPath, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "store ready")
	assert.FileExists(t, dbPath)

	// Idempotent: a second init reopens without re-bootstrapping.
	out, err = execute(t, dbPath, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "store ready")
}

func TestTransactWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "facts.db")

	factPath := filepath.Join(tmpDir, "facts.yaml")
	require.NoError(t, os.WriteFile(factPath, []byte(`
facts:
  - e: note
    a: :db/doc
    v: "remember the milk"
`), 0644))

	out, err := execute(t, dbPath, "transact", factPath)
	require.NoError(t, err)
	assert.Contains(t, out, "committed tx")
	assert.Contains(t, out, "note -> 65536")

	out, err = execute(t, dbPath, "datoms")
	require.NoError(t, err)
	assert.Contains(t, out, `:db/doc "remember the milk"`)

	out, err = execute(t, dbPath, "log")
	require.NoError(t, err)
	assert.Contains(t, out, ":db/txInstant")
	assert.Contains(t, out, `"remember the milk"`)

	out, err = execute(t, dbPath, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, ":db/ident")
	assert.Contains(t, out, "unique=identity")

	out, err = execute(t, dbPath, "partitions")
	require.NoError(t, err)
	assert.Contains(t, out, "db.part/user")
	assert.Contains(t, out, "next=65537")
}

func TestTransactJSONOutput(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "facts.db")

	factPath := filepath.Join(tmpDir, "facts.yaml")
	require.NoError(t, os.WriteFile(factPath, []byte(`
facts:
  - e: note
    a: :db/doc
    v: "hello"
`), 0644))

	out, err := execute(t, dbPath, "transact", factPath, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTransactRejectionExitCode(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "facts.db")

	// In range for the user partition but never allocated.
	factPath := filepath.Join(tmpDir, "facts.yaml")
	require.NoError(t, os.WriteFile(factPath, []byte(`
facts:
  - e: 70000
    a: :db/doc
    v: "nobody lives here"
`), 0644))

	out, err := execute(t, dbPath, "transact", factPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "error:")
}

func TestTransactBadFactFile(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "facts.db")

	factPath := filepath.Join(tmpDir, "facts.yaml")
	require.NoError(t, os.WriteFile(factPath, []byte(`
facts:
  - e: note
    a: :no/such
    v: 1
`), 0644))

	_, err := execute(t, dbPath, "transact", factPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLogSingleTransaction(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "facts.db")

	factPath := filepath.Join(tmpDir, "facts.yaml")
	require.NoError(t, os.WriteFile(factPath, []byte(`
facts:
  - e: note
    a: :db/doc
    v: "only this one"
`), 0644))
	_, err := execute(t, dbPath, "transact", factPath)
	require.NoError(t, err)

	// 268435457 is the first transaction after the bootstrap.
	out, err := execute(t, dbPath, "log", "--tx", "268435457")
	require.NoError(t, err)
	assert.Contains(t, out, `"only this one"`)
	assert.NotContains(t, out, ":db.install/attribute")
}
