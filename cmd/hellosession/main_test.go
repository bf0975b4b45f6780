package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hellosession/internal/repos"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	require.NoError(t, app.Run([]string{"hellosession", "version"}))
	assert.Equal(t, "hellosession dev (commit: unknown)\n", out.String())
}

func TestMigrateCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("HELLOSESSION_DB_DSN", dsn)

	require.NoError(t, newApp().Run([]string{"hellosession", "migrate"}))

	db, err := repos.Connect(repos.DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	var version int64
	require.NoError(t, db.Get(&version, `SELECT MAX(version_id) FROM goose_db_version`))
	assert.Equal(t, int64(1), version)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, n)
}

func TestMigrateConfigFile(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "from-file.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db:\n  dsn: "+dsn+"\n"), 0o600))

	require.NoError(t, newApp().Run([]string{"hellosession", "--config", cfgPath, "migrate"}))
	_, err := os.Stat(dsn)
	assert.NoError(t, err)

	err = newApp().Run([]string{"hellosession", "-c", filepath.Join(dir, "missing.yaml"), "migrate"})
	assert.ErrorContains(t, err, "load config")
}
