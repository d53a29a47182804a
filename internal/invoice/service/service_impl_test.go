package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/storefront/internal/audit/domain"
	auditrepo "github.com/smallbiznis/storefront/internal/audit/repository"
	auditservice "github.com/smallbiznis/storefront/internal/audit/service"
	"github.com/smallbiznis/storefront/internal/clock"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/internal/invoice/numbering"
	invoicerepo "github.com/smallbiznis/storefront/internal/invoice/repository"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	orderrepo "github.com/smallbiznis/storefront/internal/order/repository"
	"github.com/smallbiznis/storefront/internal/providers/pdf"
	settingsdomain "github.com/smallbiznis/storefront/internal/settings/domain"
	settingsrepo "github.com/smallbiznis/storefront/internal/settings/repository"
	settingsservice "github.com/smallbiznis/storefront/internal/settings/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// stubRenderer encodes the invoice number so documents are stable and
// distinguishable.
type stubRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *stubRenderer) Render(_ context.Context, data domain.InvoiceData) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	payload := fmt.Sprintf("%s|%d|%d|%s", data.InvoiceNumber, data.TaxAmount, data.GrandTotal, data.TermsText)
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte(payload)), nil
}

func (r *stubRenderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) InvoiceRaised(ctx context.Context, inv domain.Invoice) error {
	return m.Called(ctx, inv.InvoiceNumber).Error(0)
}

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	svc      *Service
	query    domain.QueryService
	renderer *stubRenderer
	notifier *mockNotifier
}

type fixtureOption func(*Params)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&settingsdomain.Setting{},
		&domain.InvoiceSequence{},
		&domain.Invoice{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC))
	log := zap.NewNop()

	cfg := config.Config{Invoice: config.InvoiceConfig{
		BrandName:     "Storefront",
		SettingsTTL:   time.Minute,
		ItemTimeout:   5 * time.Second,
		LockTTL:       10 * time.Second,
		NotifyTimeout: time.Second,
		BulkMaxItems:  50,
	}}
	holder := config.NewStaticInvoiceConfigHolder(config.DefaultInvoiceDocumentConfig())

	renderer := &stubRenderer{}
	notifier := &mockNotifier{}
	notifier.On("InvoiceRaised", mock.Anything, mock.Anything).Return(nil).Maybe()

	repo := invoicerepo.Provide()
	orders := orderrepo.Provide()
	p := Params{
		DB:            db,
		Log:           log,
		GenID:         node,
		Clock:         fc,
		Config:        cfg,
		InvoiceConfig: holder,
		Repo:          repo,
		Orders:        orders,
		Settings: settingsservice.NewResolver(settingsservice.Params{
			Config: cfg,
			Log:    log,
			Clock:  fc,
			Repo:   settingsrepo.Provide(db),
		}),
		Numbers:  numbering.NewIssuer(numbering.Params{DB: db, Config: holder}),
		Renderer: renderer,
		Notifier: notifier,
		AuditSvc: auditservice.NewService(auditservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
			Clock: fc,
			Repo:  auditrepo.Provide(),
		}),
	}
	for _, opt := range opts {
		opt(&p)
	}

	return &fixture{
		db:       db,
		node:     node,
		clock:    fc,
		svc:      NewService(p),
		query:    NewQueryService(QueryParams{DB: db, Log: log, Repo: repo, Orders: orders}),
		renderer: renderer,
		notifier: notifier,
	}
}

func (f *fixture) seedSettings(t *testing.T, gst bool, rate string) {
	t.Helper()
	rows := []settingsdomain.Setting{
		{Category: settingsdomain.CategoryShop, Key: settingsdomain.KeyStoreName, Value: "Kala Store"},
		{Category: settingsdomain.CategoryShop, Key: settingsdomain.KeyStoreEmail, Value: "help@kala.test"},
		{Category: settingsdomain.CategoryBilling, Key: settingsdomain.KeyGSTNumber, Value: "27ABCDE1234F1Z5"},
		{Category: settingsdomain.CategoryBilling, Key: settingsdomain.KeyEnableGST, Value: fmt.Sprint(gst), DataType: settingsdomain.DataTypeBoolean},
		{Category: settingsdomain.CategoryBilling, Key: settingsdomain.KeyTaxRate, Value: rate, DataType: settingsdomain.DataTypeNumber},
	}
	for i := range rows {
		rows[i].ID = f.node.Generate()
		if rows[i].DataType == "" {
			rows[i].DataType = settingsdomain.DataTypeString
		}
		require.NoError(t, f.db.Create(&rows[i]).Error)
	}
}

type orderFixture struct {
	payment  orderdomain.PaymentStatus
	subtotal int64
	shipping int64
	discount int64
	total    int64
}

func (f *fixture) seedOrder(t *testing.T, o orderFixture) snowflake.ID {
	t.Helper()
	if o.payment == "" {
		o.payment = orderdomain.PaymentStatusPaid
	}
	id := f.node.Generate()
	party := orderdomain.Party{
		Name:         "Asha Rao",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "KA",
		PostalCode:   "560001",
		Country:      "India",
		Email:        "asha@example.com",
		Phone:        "+91 90000 12345",
	}
	order := orderdomain.Order{
		ID:              id,
		OrderNumber:     "ORD-" + id.String(),
		Status:          "delivered",
		PaymentStatus:   o.payment,
		Subtotal:        o.subtotal,
		ShippingAmount:  o.shipping,
		DiscountAmount:  o.discount,
		TotalAmount:     o.total,
		BillingAddress:  datatypes.NewJSONType(party),
		ShippingAddress: datatypes.NewJSONType(party),
		CreatedAt:       f.clock.Now(),
		UpdatedAt:       f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&order).Error)
	item := orderdomain.OrderItem{
		ID:          f.node.Generate(),
		OrderID:     id,
		ProductName: "Block Print Kurta",
		SKU:         "BPK-1",
		Size:        "M",
		Color:       "Indigo",
		UnitPrice:   o.subtotal,
		Quantity:    1,
		LineTotal:   o.subtotal,
	}
	require.NoError(t, f.db.Create(&item).Error)
	f.clock.Advance(time.Second)
	return id
}

func (f *fixture) paidOrder(t *testing.T) snowflake.ID {
	return f.seedOrder(t, orderFixture{subtotal: 1180, total: 1180})
}

func (f *fixture) load(t *testing.T, id string) *domain.Invoice {
	t.Helper()
	var inv domain.Invoice
	require.NoError(t, f.db.Where("id = ?", id).Take(&inv).Error)
	return &inv
}

func (f *fixture) count(t *testing.T, orderID snowflake.ID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.Invoice{}).Where("order_id = ?", orderID).Count(&n).Error)
	return n
}

func TestGenerateInvoiceExtractsInclusiveGST(t *testing.T) {
	f := newFixture(t)
	f.seedSettings(t, true, "18")
	orderID := f.paidOrder(t)

	res := f.svc.GenerateInvoice(context.Background(), orderID.String())
	require.True(t, res.Success, res.Message)
	assert.False(t, res.Existing)
	assert.Equal(t, "INV-202603-000001", res.InvoiceNumber)
	assert.Empty(t, res.Warnings)

	inv := f.load(t, res.InvoiceID)
	assert.Equal(t, domain.InvoiceStatusGenerated, inv.Status)
	assert.Equal(t, int64(180), inv.TaxAmount)
	assert.Equal(t, int64(1000), inv.SubtotalBeforeTax)
	assert.Equal(t, int64(1180), inv.GrandTotal)
	assert.Equal(t, 18.0, inv.TaxRate)
	assert.Equal(t, "Kala Store", inv.Company.Data().StoreName)
	assert.True(t, strings.HasPrefix(inv.Document, "data:application/pdf;base64,"))
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "Block Print Kurta (M, Indigo)", inv.LineItems[0].Description)
	assert.Nil(t, inv.RaisedAt)
}

func TestGenerateInvoiceTaxDisabled(t *testing.T) {
	f := newFixture(t)
	f.seedSettings(t, false, "18")
	orderID := f.seedOrder(t, orderFixture{subtotal: 999, shipping: 40, discount: 39, total: 1000})

	res := f.svc.GenerateInvoice(context.Background(), orderID.String())
	require.True(t, res.Success, res.Message)

	inv := f.load(t, res.InvoiceID)
	assert.Zero(t, inv.TaxAmount)
	assert.Zero(t, inv.TaxRate)
	assert.Equal(t, int64(999), inv.SubtotalBeforeTax)
	assert.Equal(t, inv.SubtotalBeforeTax+inv.TaxAmount+inv.ShippingAmount-inv.DiscountAmount, inv.GrandTotal)
	assert.Equal(t, int64(1000), inv.GrandTotal)
}

func TestGenerateInvoiceIgnoresNaNTaxRate(t *testing.T) {
	f := newFixture(t)
	f.seedSettings(t, true, "NaN")

	var res domain.GenerateResult
	require.NotPanics(t, func() {
		res = f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	})
	require.True(t, res.Success, res.Message)

	inv := f.load(t, res.InvoiceID)
	assert.Zero(t, inv.TaxRate)
	assert.Zero(t, inv.TaxAmount)
	assert.Equal(t, int64(1180), inv.GrandTotal)
}

func TestGenerateInvoiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	orderID := f.paidOrder(t)

	first := f.svc.GenerateInvoice(context.Background(), orderID.String())
	require.True(t, first.Success)
	second := f.svc.GenerateInvoice(context.Background(), orderID.String())
	require.True(t, second.Success)

	assert.True(t, second.Existing)
	assert.Equal(t, first.InvoiceID, second.InvoiceID)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Equal(t, int64(1), f.count(t, orderID))
	assert.Equal(t, 1, f.renderer.Calls())
}

func TestGenerateInvoiceConcurrentCallsPersistOneRow(t *testing.T) {
	f := newFixture(t)
	orderID := f.paidOrder(t)

	const callers = 8
	results := make([]domain.GenerateResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.svc.GenerateInvoice(context.Background(), orderID.String())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), f.count(t, orderID))
	created := 0
	for _, res := range results {
		require.True(t, res.Success, res.Message)
		assert.Equal(t, results[0].InvoiceID, res.InvoiceID)
		assert.Equal(t, results[0].InvoiceNumber, res.InvoiceNumber)
		if !res.Existing {
			created++
		}
	}
	assert.Equal(t, 1, created)
}

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, false, nil
}

func TestGenerateInvoiceReportsInFlightWhenLockHeld(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.Locker = busyLocker{} })
	orderID := f.paidOrder(t)

	res := f.svc.GenerateInvoice(context.Background(), orderID.String())
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindPreconditionFailed, res.Code)
	assert.Zero(t, f.count(t, orderID))
}

func TestGenerateInvoiceFailures(t *testing.T) {
	f := newFixture(t)
	pending := f.seedOrder(t, orderFixture{payment: orderdomain.PaymentStatusPending, subtotal: 100, total: 100})

	cases := []struct {
		name    string
		orderID string
		code    domain.Kind
	}{
		{"malformed id", "abc", domain.KindInvalidRequest},
		{"empty id", " ", domain.KindInvalidRequest},
		{"missing order", "123456789", domain.KindNotFound},
		{"payment pending", pending.String(), domain.KindPreconditionFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := f.svc.GenerateInvoice(context.Background(), tc.orderID)
			assert.False(t, res.Success)
			assert.Equal(t, tc.code, res.Code)
			assert.NotEmpty(t, res.Message)
		})
	}
	assert.Zero(t, f.count(t, pending))
}

func TestGenerateInvoiceRenderFailureLeavesNoRow(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = errors.New("bad font")
	orderID := f.paidOrder(t)

	res := f.svc.GenerateInvoice(context.Background(), orderID.String())
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindRenderFailure, res.Code)
	assert.Zero(t, f.count(t, orderID))
}

func TestGenerateInvoiceIntegrityMismatch(t *testing.T) {
	t.Run("warns by default", func(t *testing.T) {
		f := newFixture(t)
		orderID := f.seedOrder(t, orderFixture{subtotal: 1180, total: 1300})

		res := f.svc.GenerateInvoice(context.Background(), orderID.String())
		require.True(t, res.Success)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "1300")
	})

	t.Run("fails when strict", func(t *testing.T) {
		doc := config.DefaultInvoiceDocumentConfig()
		doc.StrictTotals = true
		f := newFixture(t, func(p *Params) { p.InvoiceConfig = config.NewStaticInvoiceConfigHolder(doc) })
		orderID := f.seedOrder(t, orderFixture{subtotal: 1180, total: 1300})

		res := f.svc.GenerateInvoice(context.Background(), orderID.String())
		assert.False(t, res.Success)
		assert.Equal(t, domain.KindIntegrityMismatch, res.Code)
		assert.Zero(t, f.count(t, orderID))
	})
}

type failingSettingsRepo struct{}

func (failingSettingsRepo) ListByCategories(context.Context, []string) ([]*settingsdomain.Setting, error) {
	return nil, errors.New("connection refused")
}

func TestGenerateInvoiceDegradedSettingsWarns(t *testing.T) {
	f := newFixture(t, func(p *Params) {
		p.Settings = settingsservice.NewResolver(settingsservice.Params{
			Config: p.Config,
			Log:    zap.NewNop(),
			Clock:  p.Clock,
			Repo:   failingSettingsRepo{},
		})
	})
	orderID := f.paidOrder(t)

	res := f.svc.GenerateInvoice(context.Background(), orderID.String())
	require.True(t, res.Success, res.Message)
	require.NotEmpty(t, res.Warnings)

	inv := f.load(t, res.InvoiceID)
	assert.Equal(t, "Storefront", inv.Company.Data().StoreName)
	assert.Zero(t, inv.TaxAmount)
}

func TestBulkGenerateInvoices(t *testing.T) {
	f := newFixture(t)
	a := f.paidOrder(t)
	b := f.seedOrder(t, orderFixture{payment: orderdomain.PaymentStatusPending, subtotal: 10, total: 10})
	c := f.paidOrder(t)

	res := f.svc.BulkGenerateInvoices(context.Background(), []string{a.String(), b.String(), "nope", c.String()})
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 2, res.FailureCount)
	require.Len(t, res.Items, 4)
	assert.True(t, res.Items[0].Success)
	assert.Equal(t, domain.KindPreconditionFailed, res.Items[1].Code)
	assert.Equal(t, domain.KindInvalidRequest, res.Items[2].Code)
	assert.True(t, res.Items[3].Success)
	assert.NotEqual(t, res.Items[0].InvoiceNumber, res.Items[3].InvoiceNumber)
}

func TestBulkGenerateInvoicesAllFail(t *testing.T) {
	f := newFixture(t)

	res := f.svc.BulkGenerateInvoices(context.Background(), []string{"1", "2"})
	assert.False(t, res.Success)
	assert.Zero(t, res.SuccessCount)

	empty := f.svc.BulkGenerateInvoices(context.Background(), nil)
	assert.False(t, empty.Success)
	assert.Equal(t, domain.KindInvalidRequest, empty.Code)
}

func TestRaiseInvoiceIsOneWay(t *testing.T) {
	f := newFixture(t)
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	require.True(t, gen.Success)

	res := f.svc.RaiseInvoice(context.Background(), gen.InvoiceID)
	require.True(t, res.Success, res.Message)
	assert.True(t, res.Raised)
	f.svc.Wait()

	inv := f.load(t, gen.InvoiceID)
	assert.Equal(t, domain.InvoiceStatusRaised, inv.Status)
	require.NotNil(t, inv.RaisedAt)
	f.notifier.AssertCalled(t, "InvoiceRaised", mock.Anything, gen.InvoiceNumber)

	again := f.svc.RaiseInvoice(context.Background(), gen.InvoiceID)
	assert.False(t, again.Success)
	assert.False(t, again.Raised)
	assert.Equal(t, domain.KindPreconditionFailed, again.Code)

	missing := f.svc.RaiseInvoice(context.Background(), "42")
	assert.Equal(t, domain.KindNotFound, missing.Code)
}

func TestRaiseInvoiceSucceedsWhenNotificationFails(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("InvoiceRaised", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	f := newFixture(t, func(p *Params) { p.Notifier = notifier })
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())

	res := f.svc.RaiseInvoice(context.Background(), gen.InvoiceID)
	f.svc.Wait()
	assert.True(t, res.Success)
	notifier.AssertNumberOfCalls(t, "InvoiceRaised", 1)

	var n int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).Where("action = ?", auditdomain.ActionInvoiceNotifyFailed).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestBulkRaiseInvoicesCountsOnlyGenerated(t *testing.T) {
	f := newFixture(t)
	a := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	b := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	c := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	require.True(t, f.svc.RaiseInvoice(context.Background(), c.InvoiceID).Success)
	f.svc.Wait()
	cBefore := f.load(t, c.InvoiceID)

	f.clock.Advance(time.Hour)
	res := f.svc.BulkRaiseInvoices(context.Background(), []string{a.InvoiceID, b.InvoiceID, c.InvoiceID, "garbage"})
	f.svc.Wait()

	require.True(t, res.Success)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 4, res.Requested)
	assert.ElementsMatch(t, []string{a.InvoiceID, b.InvoiceID}, res.Raised)

	cAfter := f.load(t, c.InvoiceID)
	assert.Equal(t, domain.InvoiceStatusRaised, cAfter.Status)
	assert.True(t, cBefore.RaisedAt.Equal(*cAfter.RaisedAt))
	assert.Equal(t, domain.InvoiceStatusRaised, f.load(t, a.InvoiceID).Status)

	empty := f.svc.BulkRaiseInvoices(context.Background(), nil)
	assert.False(t, empty.Success)
}

func TestDownloadInvoiceTransitionsOnce(t *testing.T) {
	f := newFixture(t)
	orderID := f.paidOrder(t)
	gen := f.svc.GenerateInvoice(context.Background(), orderID.String())

	early := f.svc.DownloadInvoice(context.Background(), gen.InvoiceID, nil)
	assert.False(t, early.Success)
	assert.Equal(t, domain.KindPreconditionFailed, early.Code)
	assert.Equal(t, domain.InvoiceStatusGenerated, f.load(t, gen.InvoiceID).Status)

	require.True(t, f.svc.RaiseInvoice(context.Background(), gen.InvoiceID).Success)
	f.svc.Wait()

	first := f.svc.DownloadInvoice(context.Background(), gen.InvoiceID, nil)
	require.True(t, first.Success, first.Message)
	afterFirst := f.load(t, gen.InvoiceID)
	assert.Equal(t, domain.InvoiceStatusDownloaded, afterFirst.Status)
	require.NotNil(t, afterFirst.DownloadedAt)

	f.clock.Advance(time.Hour)
	oid := orderID.String()
	second := f.svc.DownloadInvoice(context.Background(), gen.InvoiceID, &oid)
	require.True(t, second.Success)
	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, "inv-202603-000001.pdf", second.FileName)

	afterSecond := f.load(t, gen.InvoiceID)
	assert.True(t, afterFirst.DownloadedAt.Equal(*afterSecond.DownloadedAt))
	assert.Equal(t, 1, f.renderer.Calls())
}

func TestDownloadInvoiceRejectsOtherOrder(t *testing.T) {
	f := newFixture(t)
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	require.True(t, f.svc.RaiseInvoice(context.Background(), gen.InvoiceID).Success)
	f.svc.Wait()

	other := f.paidOrder(t).String()
	res := f.svc.DownloadInvoice(context.Background(), gen.InvoiceID, &other)
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindNotFound, res.Code)
	assert.Equal(t, domain.InvoiceStatusRaised, f.load(t, gen.InvoiceID).Status)
}

func TestPreviewInvoiceHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	before := f.load(t, gen.InvoiceID)

	first := f.svc.PreviewInvoice(context.Background(), gen.InvoiceID)
	second := f.svc.PreviewInvoice(context.Background(), gen.InvoiceID)
	require.True(t, first.Success)
	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, before.Document, first.Document)

	after := f.load(t, gen.InvoiceID)
	assert.Equal(t, before.Status, after.Status)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	assert.Nil(t, after.RaisedAt)
	assert.Nil(t, after.DownloadedAt)

	missing := f.svc.PreviewInvoice(context.Background(), "77")
	assert.Equal(t, domain.KindNotFound, missing.Code)
}

func TestPreviewUsesStoredCompanySnapshot(t *testing.T) {
	f := newFixture(t)
	f.seedSettings(t, true, "18")
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())

	require.NoError(t, f.db.Model(&settingsdomain.Setting{}).
		Where("key = ?", settingsdomain.KeyEnableGST).
		Update("value", "false").Error)
	f.svc.settings.Invalidate()

	res := f.svc.PreviewInvoice(context.Background(), gen.InvoiceID)
	require.True(t, res.Success)
	assert.Equal(t, f.load(t, gen.InvoiceID).Document, res.Document)
}

func TestPreviewKeepsTermsFromGeneration(t *testing.T) {
	f := newFixture(t)
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	require.True(t, gen.Success)
	stored := f.load(t, gen.InvoiceID)
	assert.Equal(t, config.DefaultInvoiceDocumentConfig().TermsText, stored.TermsText)

	changed := config.DefaultInvoiceDocumentConfig()
	changed.TermsText = "All sales are final."
	f.svc.docCfg = config.NewStaticInvoiceConfigHolder(changed)

	res := f.svc.PreviewInvoice(context.Background(), gen.InvoiceID)
	require.True(t, res.Success)
	assert.Equal(t, stored.Document, res.Document)
}

func TestPreviewWithPDFRendererIsByteStable(t *testing.T) {
	f := newFixture(t, func(p *Params) {
		p.Renderer = pdf.New(nil, nil, nil)
	})
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	require.True(t, gen.Success)

	first := f.svc.PreviewInvoice(context.Background(), gen.InvoiceID)
	require.True(t, first.Success)
	for i := 0; i < 3; i++ {
		again := f.svc.PreviewInvoice(context.Background(), gen.InvoiceID)
		require.True(t, again.Success)
		assert.Equal(t, first.Document, again.Document)
	}
}

func TestDeleteInvoiceOnlyFromGenerated(t *testing.T) {
	f := newFixture(t)
	orderID := f.paidOrder(t)
	gen := f.svc.GenerateInvoice(context.Background(), orderID.String())

	res := f.svc.DeleteInvoice(context.Background(), gen.InvoiceID)
	require.True(t, res.Success)
	assert.Zero(t, f.count(t, orderID))

	again := f.svc.DeleteInvoice(context.Background(), gen.InvoiceID)
	assert.Equal(t, domain.KindNotFound, again.Code)

	regen := f.svc.GenerateInvoice(context.Background(), orderID.String())
	require.True(t, regen.Success)
	assert.False(t, regen.Existing)
	assert.NotEqual(t, gen.InvoiceNumber, regen.InvoiceNumber)
}

func TestDeleteInvoiceRefusesIssued(t *testing.T) {
	f := newFixture(t)
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	require.True(t, f.svc.RaiseInvoice(context.Background(), gen.InvoiceID).Success)
	f.svc.Wait()
	require.True(t, f.svc.DownloadInvoice(context.Background(), gen.InvoiceID, nil).Success)

	res := f.svc.DeleteInvoice(context.Background(), gen.InvoiceID)
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindPreconditionFailed, res.Code)
	assert.Equal(t, domain.InvoiceStatusDownloaded, f.load(t, gen.InvoiceID).Status)
}

func TestGetInvoiceByOrderIDOnlyIssued(t *testing.T) {
	f := newFixture(t)
	orderID := f.paidOrder(t)
	gen := f.svc.GenerateInvoice(context.Background(), orderID.String())

	hidden := f.svc.GetInvoiceByOrderID(context.Background(), orderID.String())
	assert.False(t, hidden.Success)
	assert.Equal(t, domain.KindNotFound, hidden.Code)

	require.True(t, f.svc.RaiseInvoice(context.Background(), gen.InvoiceID).Success)
	f.svc.Wait()

	found := f.svc.GetInvoiceByOrderID(context.Background(), orderID.String())
	require.True(t, found.Success)
	require.NotNil(t, found.Invoice)
	assert.Equal(t, gen.InvoiceNumber, found.Invoice.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusRaised, found.Invoice.Status)
}

func TestLifecycleWritesAuditTrail(t *testing.T) {
	f := newFixture(t)
	gen := f.svc.GenerateInvoice(context.Background(), f.paidOrder(t).String())
	require.True(t, f.svc.RaiseInvoice(context.Background(), gen.InvoiceID).Success)
	f.svc.Wait()
	require.True(t, f.svc.DownloadInvoice(context.Background(), gen.InvoiceID, nil).Success)

	var actions []string
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).
		Where("target_id = ?", gen.InvoiceID).
		Order("created_at asc, id asc").
		Pluck("action", &actions).Error)
	assert.Equal(t, []string{
		auditdomain.ActionInvoiceGenerated,
		auditdomain.ActionInvoiceRaised,
		auditdomain.ActionInvoiceDownloaded,
	}, actions)
}
