package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/storefront/internal/invoice/domain"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListInvoicesTabs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		res := f.svc.GenerateInvoice(ctx, f.paidOrder(t).String())
		require.True(t, res.Success)
		ids = append(ids, res.InvoiceID)
		f.clock.Advance(time.Minute)
	}
	require.True(t, f.svc.RaiseInvoice(ctx, ids[0]).Success)
	f.svc.Wait()

	generated, err := f.query.ListInvoices(ctx, domain.ListInvoicesRequest{Tab: domain.ListTabGenerated})
	require.NoError(t, err)
	require.Len(t, generated.Invoices, 2)
	assert.Equal(t, ids[2], generated.Invoices[0].ID)
	assert.Equal(t, ids[1], generated.Invoices[1].ID)

	issued, err := f.query.ListInvoices(ctx, domain.ListInvoicesRequest{Tab: domain.ListTabIssued})
	require.NoError(t, err)
	require.Len(t, issued.Invoices, 1)
	assert.Equal(t, domain.InvoiceStatusRaised, issued.Invoices[0].Status)

	_, err = f.query.ListInvoices(ctx, domain.ListInvoicesRequest{Tab: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidListTab)
}

func TestListInvoicesPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		res := f.svc.GenerateInvoice(ctx, f.paidOrder(t).String())
		require.True(t, res.Success)
		ids = append(ids, res.InvoiceID)
		f.clock.Advance(time.Minute)
	}

	first, err := f.query.ListInvoices(ctx, domain.ListInvoicesRequest{
		Tab:        domain.ListTabGenerated,
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.Invoices, 2)
	assert.True(t, first.PageInfo.HasMore)
	require.NotEmpty(t, first.PageInfo.NextPageToken)

	second, err := f.query.ListInvoices(ctx, domain.ListInvoicesRequest{
		Tab:        domain.ListTabGenerated,
		Pagination: pagination.Pagination{PageSize: 2, PageToken: first.PageInfo.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, second.Invoices, 1)
	assert.False(t, second.PageInfo.HasMore)
	assert.Equal(t, ids[0], second.Invoices[0].ID)

	_, err = f.query.ListInvoices(ctx, domain.ListInvoicesRequest{
		Tab:        domain.ListTabGenerated,
		Pagination: pagination.Pagination{PageToken: "%%%"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestListEligibleOrdersExcludesInvoiced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invoiced := f.paidOrder(t)
	open := f.paidOrder(t)
	f.seedOrder(t, orderFixture{payment: orderdomain.PaymentStatusPending, subtotal: 10, total: 10})
	require.True(t, f.svc.GenerateInvoice(ctx, invoiced.String()).Success)

	resp, err := f.query.ListEligibleOrders(ctx, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, open, resp.Orders[0].ID)
	assert.Equal(t, "Asha Rao", resp.Orders[0].CustomerName)
	assert.False(t, resp.PageInfo.HasMore)
}

func TestGetInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gen := f.svc.GenerateInvoice(ctx, f.paidOrder(t).String())

	view, err := f.query.GetInvoice(ctx, gen.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, gen.InvoiceNumber, view.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusGenerated, view.Status)
	assert.Len(t, view.LineItems, 1)

	_, err = f.query.GetInvoice(ctx, "55")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
	_, err = f.query.GetInvoice(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceID)
}

func TestExportRegisterDefaultsToIssued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.svc.GenerateInvoice(ctx, f.paidOrder(t).String())
	f.svc.GenerateInvoice(ctx, f.paidOrder(t).String())
	require.True(t, f.svc.RaiseInvoice(ctx, a.InvoiceID).Success)
	f.svc.Wait()

	rows, err := f.query.ExportRegister(ctx, domain.ExportRequest{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.InvoiceNumber, rows[0].InvoiceNumber)

	all, err := f.query.ExportRegister(ctx, domain.ExportRequest{
		Statuses: []domain.InvoiceStatus{domain.InvoiceStatusGenerated, domain.InvoiceStatusRaised},
	})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "inv-202603-000001.pdf", FileName("INV-202603-000001"))
	assert.Equal(t, "sf-26-0007.pdf", FileName("SF/26/0007"))
	assert.Equal(t, "invoice.pdf", FileName(""))
}
