package domain

import (
	"context"
	"errors"

	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	settingsdomain "github.com/smallbiznis/storefront/internal/settings/domain"
)

var (
	ErrInvalidInvoiceID    = errors.New("invalid_invoice_id")
	ErrInvalidOrderID      = errors.New("invalid_order_id")
	ErrEmptyBatch          = errors.New("empty_batch")
	ErrBatchTooLarge       = errors.New("batch_too_large")
	ErrInvalidListTab      = errors.New("invalid_list_tab")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrPaymentIncomplete   = errors.New("payment_incomplete")
	ErrInvoiceNotRaisable  = errors.New("invoice_not_raisable")
	ErrInvoiceNotIssued    = errors.New("invoice_not_issued")
	ErrInvoiceNotDeletable = errors.New("invoice_not_deletable")
	ErrGenerationInFlight  = errors.New("invoice_generation_in_progress")
	ErrIntegrityMismatch   = errors.New("invoice_integrity_mismatch")
	ErrNumberUnavailable   = errors.New("invoice_number_unavailable")
	ErrRenderFailed        = errors.New("invoice_render_failed")
)

// Kind is the outcome code carried on every result.
type Kind string

const (
	KindNone                Kind = ""
	KindInvalidRequest      Kind = "invalid_request"
	KindNotFound            Kind = "not_found"
	KindPreconditionFailed  Kind = "precondition_failed"
	KindIntegrityMismatch   Kind = "integrity_mismatch"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindRenderFailure       Kind = "render_failure"
	KindInternal            Kind = "internal"
)

// KindOf classifies err into the invoice error taxonomy.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidInvoiceID),
		errors.Is(err, ErrInvalidOrderID),
		errors.Is(err, ErrEmptyBatch),
		errors.Is(err, ErrBatchTooLarge),
		errors.Is(err, ErrInvalidListTab),
		errors.Is(err, ErrInvalidPageToken):
		return KindInvalidRequest
	case errors.Is(err, ErrInvoiceNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound):
		return KindNotFound
	case errors.Is(err, ErrPaymentIncomplete),
		errors.Is(err, ErrInvoiceNotRaisable),
		errors.Is(err, ErrInvoiceNotIssued),
		errors.Is(err, ErrInvoiceNotDeletable),
		errors.Is(err, ErrGenerationInFlight):
		return KindPreconditionFailed
	case errors.Is(err, ErrIntegrityMismatch):
		return KindIntegrityMismatch
	case errors.Is(err, ErrNumberUnavailable),
		errors.Is(err, settingsdomain.ErrSettingsUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrRenderFailed):
		return KindRenderFailure
	default:
		return KindInternal
	}
}
