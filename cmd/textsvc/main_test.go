package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyne/textsvc/internal/config"
	"github.com/dyne/textsvc/internal/schema"
	"github.com/dyne/textsvc/internal/service"
	_ "modernc.org/sqlite"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvPath, "")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "", "list", "--no-color")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "greeting       Greeting Service", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "repeat-2 "))
	assert.Contains(t, lines[11], "Shuffle Service")
}

func TestRunArgs(t *testing.T) {
	out, err := execute(t, "", "run", "reverse", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "dlrow olleh\n", out)

	out, err = execute(t, "", "run", "COUNT", "a b")
	require.NoError(t, err)
	assert.Equal(t, "Characters: 3\nWords: 2\nLines: 1\n", out)
}

func TestRunStdin(t *testing.T) {
	out, err := execute(t, "hello\n", "run", "uppercase")
	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", out)
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "", "run", "reverse")
	require.Error(t, err)
	assert.Equal(t, "please enter text first", err.Error())

	_, err = execute(t, "", "run", "x", "hello")
	require.Error(t, err)
	assert.Equal(t, `please select a valid service: unknown service: "x"`, err.Error())
	assert.ErrorIs(t, err, service.ErrUnknownService)

	_, err = execute(t, "")
	assert.NoError(t, err, "bare root prints help")

	_, err = execute(t, "", "run")
	assert.Error(t, err)
}

func TestRunSeededShuffle(t *testing.T) {
	first, err := execute(t, "", "--seed", "7", "run", "shuffle", "abcdefghij")
	require.NoError(t, err)
	second, err := execute(t, "", "--seed", "7", "run", "shuffle", "abcdefghij")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, len("abcdefghij\n"))
}

func TestConfiguredServices(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "textsvc.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
services:
  - key: rot13
    type: cipher
    shift: 13
    label: ROT13
  - key: repeat-7
    type: repeat
    times: 7
`), 0o644))

	out, err := execute(t, "", "--config", cfgPath, "run", "rot13", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Uryyb\n", out)

	out, err = execute(t, "", "--config", cfgPath, "list", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "ROT13")
	assert.Contains(t, out, "Repeat Service (7 times)")
}

func TestConfigFromEnv(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "textsvc.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[[services]]\nkey = \"shout\"\ntype = \"upper\"\n"), 0o644))

	cmd := newRootCmd()
	t.Setenv(config.EnvPath, cfgPath)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"run", "shout", "hi"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "HI\n", out.String())
}

func TestDatabaseCommands(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.sqlite")
	outPath := filepath.Join(dir, "out.sqlite")
	db, err := sql.Open("sqlite", schema.DSN(inPath))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO notes (body) VALUES ('hello'), ('world')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfgPath := filepath.Join(dir, "textsvc.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("tables:\n  notes:\n    columns:\n      body: reverse\n"), 0o644))

	out, err := execute(t, "", "inspect", "--in", inPath)
	require.NoError(t, err)
	assert.Contains(t, out, "- notes (2 rows)")
	assert.Contains(t, out, "text columns: body")

	out, err = execute(t, "", "--config", cfgPath, "plan", "--in", inPath)
	require.NoError(t, err)
	assert.Contains(t, out, "  - body: Reverse Service [reverse]")

	_, err = execute(t, "", "--config", cfgPath, "batch", "--in", inPath, "--out", outPath, "--jobs", "2")
	require.NoError(t, err)

	db, err = sql.Open("sqlite", schema.DSN(outPath))
	require.NoError(t, err)
	defer db.Close()
	var body string
	require.NoError(t, db.QueryRow(`SELECT body FROM notes WHERE id = 2`).Scan(&body))
	assert.Equal(t, "dlrow", body)

	_, err = execute(t, "", "batch", "--in", inPath)
	assert.Error(t, err, "--out is required")

	_, err = execute(t, "", "--config", cfgPath, "batch", "--in", inPath, "--out", inPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same file")
	out, err = execute(t, "", "inspect", "--in", inPath)
	require.NoError(t, err)
	assert.Contains(t, out, "- notes (2 rows)")
}

func TestReadInput(t *testing.T) {
	got, err := readInput(strings.NewReader("ignored"), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a b", got)

	got, err = readInput(strings.NewReader("line one\nline two\r\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)
}
