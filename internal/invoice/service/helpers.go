package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/storefront/internal/invoice/domain"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	settingsdomain "github.com/smallbiznis/storefront/internal/settings/domain"
)

func parseID(raw string, invalid error) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func failure(err error) domain.Result {
	return domain.Result{
		Success: false,
		Message: describe(err),
		Code:    domain.KindOf(err),
	}
}

// describe turns err into a message fit for display. Internal failures
// are not spelled out.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInvoiceID):
		return "Invalid invoice id"
	case errors.Is(err, domain.ErrInvalidOrderID):
		return "Invalid order id"
	case errors.Is(err, domain.ErrEmptyBatch):
		return "No ids were given"
	case errors.Is(err, domain.ErrBatchTooLarge):
		return "Too many ids in one request"
	case errors.Is(err, domain.ErrInvalidListTab):
		return "Unknown invoice list"
	case errors.Is(err, domain.ErrInvalidPageToken):
		return "Invalid page token"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return "Invoice not found"
	case errors.Is(err, orderdomain.ErrOrderNotFound):
		return "Order not found"
	case errors.Is(err, domain.ErrPaymentIncomplete):
		return "Order payment is not completed"
	case errors.Is(err, domain.ErrInvoiceNotRaisable):
		return "Only generated invoices can be raised"
	case errors.Is(err, domain.ErrInvoiceNotIssued):
		return "Invoice has not been raised yet"
	case errors.Is(err, domain.ErrInvoiceNotDeletable):
		return "Raised or downloaded invoices cannot be deleted"
	case errors.Is(err, domain.ErrGenerationInFlight):
		return "Invoice generation is already in progress for this order"
	case errors.Is(err, domain.ErrIntegrityMismatch):
		return "Invoice total does not match the order total"
	case errors.Is(err, domain.ErrNumberUnavailable):
		return "Could not issue an invoice number"
	case errors.Is(err, settingsdomain.ErrSettingsUnavailable):
		return "Store settings are unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "The operation timed out"
	case errors.Is(err, domain.ErrRenderFailed):
		return "Could not render the invoice document"
	default:
		return "Internal error"
	}
}

// ToView projects an invoice for JSON responses.
func ToView(inv *domain.Invoice) domain.InvoiceView {
	items := make([]domain.LineItem, len(inv.LineItems))
	copy(items, inv.LineItems)
	return domain.InvoiceView{
		ID:                inv.ID.String(),
		OrderID:           inv.OrderID.String(),
		InvoiceNumber:     inv.InvoiceNumber,
		OrderNumber:       inv.OrderNumber,
		Status:            inv.Status,
		InvoiceDate:       inv.InvoiceDate,
		OrderDate:         inv.OrderDate,
		CustomerName:      inv.CustomerName,
		CustomerEmail:     inv.CustomerEmail,
		LineItems:         items,
		SubtotalBeforeTax: inv.SubtotalBeforeTax,
		TaxRate:           inv.TaxRate,
		TaxAmount:         inv.TaxAmount,
		ShippingAmount:    inv.ShippingAmount,
		DiscountAmount:    inv.DiscountAmount,
		GrandTotal:        inv.GrandTotal,
		CreatedAt:         inv.CreatedAt,
		RaisedAt:          inv.RaisedAt,
		DownloadedAt:      inv.DownloadedAt,
	}
}

// FileName is the download name for an invoice document.
func FileName(invoiceNumber string) string {
	name := slug.Make(invoiceNumber)
	if name == "" {
		name = "invoice"
	}
	return name + ".pdf"
}
