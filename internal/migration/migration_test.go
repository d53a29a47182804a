package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	sub, err := Source()
	require.NoError(t, err)

	names, err := fs.Glob(sub, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected migration file %s", name)
		}
	}
	assert.Equal(t, ups, downs)

	driver, err := iofs.New(sub, ".")
	require.NoError(t, err)
	first, err := driver.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestInvoiceMigrationCarriesGuards(t *testing.T) {
	sub, err := Source()
	require.NoError(t, err)
	raw, err := fs.ReadFile(sub, "000003_invoices.up.sql")
	require.NoError(t, err)

	sql := string(raw)
	assert.Contains(t, sql, "ux_invoices_order_id")
	assert.Contains(t, sql, "ux_invoices_invoice_number")
	assert.Contains(t, sql, "chk_invoices_status")
}

func TestRunAutoMigratesSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:TestRunAutoMigratesSQLite?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Run(db))
	for _, table := range []string{"orders", "order_items", "settings", "invoice_sequences", "invoices", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	require.NoError(t, Run(db))
}
