package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "create orders table")

	require.NoError(t, err)
	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, "_create_orders_table.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_create_orders_table.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "create orders table")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestCreateMigrationMakesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(dir, "init")

	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"create orders table":  "create_orders_table",
		"Add-Index":            "add_index",
		"weird!!chars##here":   "weirdcharshere",
		"  spaced  out  ":      "spaced_out",
		"already_snake_case":   "already_snake_case",
		"trailing separator- ": "trailing_separator",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeName(in), "input %q", in)
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"20250101000000_one.up.sql",
		"20250101000000_one.down.sql",
		"20250102000000_two.up.sql",
		"20250102000000_two.down.sql",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	migrations, err := ListMigrations(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"20250101000000_one", "20250102000000_two"}, migrations)
}

func TestListMigrationsMissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))

	require.NoError(t, err)
	assert.Empty(t, migrations)
}
