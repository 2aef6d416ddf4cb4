package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/shopfront/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Users-Table", "add_users_table"},
		{"add__users__table", "add_users_table"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestListMigrations(t *testing.T) {
	source := fstest.MapFS{
		"000002_add_index.up.sql":    {Data: []byte("")},
		"000002_add_index.down.sql":  {Data: []byte("")},
		"000001_init.up.sql":         {Data: []byte("")},
		"000001_init.down.sql":       {Data: []byte("")},
		"README.md":                  {Data: []byte("")},
		"notanumber_thing.up.sql":    {Data: []byte("")},
		"000010_later_change.up.sql": {Data: []byte("")},
	}

	got, err := ListMigrations(source)
	require.NoError(t, err)
	assert.Equal(t, []Listed{
		{Version: 1, Name: "init"},
		{Version: 2, Name: "add_index"},
		{Version: 10, Name: "later_change"},
	}, got)
}

func TestEmbeddedSchema(t *testing.T) {
	got, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, Listed{Version: 1, Name: "init_schema"}, got[0])

	up, err := migrations.FS.ReadFile("000001_init_schema.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"users", "products", "carts", "cart_items", "orders", "order_items", "reviews"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
	assert.Contains(t, string(up), "CHECK (stock >= 0)")
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add users table")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_users_table.up.sql"), first.UpPath)
	assert.FileExists(t, first.DownPath)

	second, err := CreateMigration(dir, "Add-Index")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	content, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "add_index")

	_, err = CreateMigration(dir, "!!!")
	assert.Error(t, err)
}
