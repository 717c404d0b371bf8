package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsValidate(t *testing.T) {
	require.NoError(t, Validate(Migrations()))
}

func TestEmbeddedMigrationsCoverSchema(t *testing.T) {
	var all strings.Builder
	err := fs.WalkDir(Migrations(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(Migrations(), path)
		if err != nil {
			return err
		}
		all.Write(b)
		return nil
	})
	require.NoError(t, err)

	content := all.String()
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS menu_items",
		"quantity integer NOT NULL DEFAULT 0 CHECK (quantity >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_line ON cart_items (cart_id, line_key)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_user ON carts (user_id)",
		"CREATE TABLE IF NOT EXISTS order_sequences",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_order_number",
		"CREATE TABLE IF NOT EXISTS outbox_dlq",
	} {
		assert.Contains(t, content, want)
	}
}

func TestValidateRejectsBadFiles(t *testing.T) {
	bad := fstest.MapFS{"001_init.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")}}
	assert.Error(t, Validate(bad))

	dup := fstest.MapFS{
		"20260101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"20260101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	assert.Error(t, Validate(dup))

	missingDown := fstest.MapFS{"20260101000000_a.sql": {Data: []byte("-- +goose Up\n")}}
	assert.Error(t, Validate(missingDown))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Menu Tags!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_menu_tags.sql"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "-- +goose Up")

	require.NoError(t, Validate(os.DirFS(filepath.Dir(path))))

	_, err = CreateSQLMigration(dir, "  !!  ")
	assert.Error(t, err)
}
