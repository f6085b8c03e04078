package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelflife/shelflife-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "migration %s", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
	require.NoError(t, migrate.Validate(migrate.Embedded()))
}

func TestEmbeddedMatchesSourceTree(t *testing.T) {
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	require.NoError(t, err)
	require.Len(t, embedded, len(onDisk))
	for i := range onDisk {
		assert.Equal(t, filepath.Base(onDisk[i]), embedded[i])
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name":     {"001_init.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")}},
		"missing down": {"20240101000000_init.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}},
		"empty down":   {"20240101000000_init.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\n-- nothing\n")}},
		"duplicate version": {
			"20240101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")},
			"20240101000000_b.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")},
		},
	}
	for name, fsys := range cases {
		assert.Error(t, migrate.Validate(fsys), name)
	}
}

func TestParseVersion(t *testing.T) {
	v, err := migrate.ParseVersion("20240301000200")
	require.NoError(t, err)
	assert.Equal(t, int64(20240301000200), v)

	_, err = migrate.ParseVersion("2024")
	assert.Error(t, err)
	_, err = migrate.ParseVersion("2024030100020x")
	assert.Error(t, err)
}

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_catalog_and_inventory")
	for _, sub := range []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS products_natural_key ON products (natural_key)",
		"CHECK (quantity >= 0)",
		"CHECK (discount_percent BETWEEN 0 AND 100)",
		"CHECK (expiry_date >= received_date)",
		"DROP TABLE IF EXISTS inventory_batches",
	} {
		assert.True(t, strings.Contains(content, sub), "missing %q", sub)
	}
}

func TestShopAndWishlistUniqueness(t *testing.T) {
	assert.Contains(t, readMigration(t, "create_profiles_and_shops"), "shops_owner_id_key ON shops (owner_id)")
	assert.Contains(t, readMigration(t, "create_engagement_tables"), "wishlists_customer_product_key ON wishlists (customer_id, product_id)")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first, err := migrate.CreateSQLMigration(dir, "Add Shop Ratings!", now)
	require.NoError(t, err)
	assert.Equal(t, "20240601120000_add_shop_ratings.sql", filepath.Base(first))

	second, err := migrate.CreateSQLMigration(dir, "create_shop_reviews", now)
	require.NoError(t, err)
	assert.Equal(t, "20240601120001_create_shop_reviews.sql", filepath.Base(second))
	body, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(body), "DROP TABLE IF EXISTS shop_reviews;")

	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}
