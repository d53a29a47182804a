package numbering

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.InvoiceSequence{}))
	return db
}

func newIssuer(db *gorm.DB, template string) domain.NumberIssuer {
	doc := config.DefaultInvoiceDocumentConfig()
	doc.NumberTemplate = template
	return NewIssuer(Params{DB: db, Config: config.NewStaticInvoiceConfigHolder(doc)})
}

func TestIssueIsSequential(t *testing.T) {
	db := newTestDB(t)
	issuer := newIssuer(db, config.DefaultNumberTemplate)
	issuedAt := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	first, err := issuer.Issue(context.Background(), issuedAt)
	require.NoError(t, err)
	second, err := issuer.Issue(context.Background(), issuedAt)
	require.NoError(t, err)

	assert.Equal(t, "INV-202605-000001", first)
	assert.Equal(t, "INV-202605-000002", second)
}

func TestIssueConcurrentValuesAreDistinct(t *testing.T) {
	db := newTestDB(t)
	issuer := newIssuer(db, "N-{SEQ}")
	issuedAt := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	const n = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{}, n)
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := issuer.Issue(context.Background(), issuedAt)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[number] = struct{}{}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, n)
}

func TestIssueBadTemplateIsUpstreamFailure(t *testing.T) {
	db := newTestDB(t)
	issuer := newIssuer(db, "INV-{ORG}-{SEQ}")

	_, err := issuer.Issue(context.Background(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNumberUnavailable)
	assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))
}

func TestIssueWithoutTableFails(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&domain.InvoiceSequence{}))
	issuer := newIssuer(db, config.DefaultNumberTemplate)

	_, err := issuer.Issue(context.Background(), time.Now())
	assert.ErrorIs(t, err, domain.ErrNumberUnavailable)
}
