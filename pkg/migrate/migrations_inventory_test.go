package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationsDirValidates(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestMigrationsHavePairedDowns(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		require.NoError(t, err)
		require.Contains(t, string(b), "-- +goose Up", e.Name())
		require.Contains(t, string(b), "-- +goose Down", e.Name())
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Payments Table!")
	require.NoError(t, err)
	require.Contains(t, filepath.Base(path), "_add_payments_table.sql")

	_, err = CreateSQLMigration(dir, "")
	require.Error(t, err)
}
