package domain

import (
	"context"
	"time"

	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

// Result is the common outcome envelope. Operations never return Go
// errors across the service boundary; failures set Success=false and Code.
type Result struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Code     Kind     `json:"code,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type GenerateResult struct {
	Result
	InvoiceID     string `json:"invoice_id,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Existing      bool   `json:"existing,omitempty"`
}

type BulkGenerateItem struct {
	OrderID       string `json:"order_id"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Code          Kind   `json:"code,omitempty"`
	InvoiceID     string `json:"invoice_id,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Existing      bool   `json:"existing,omitempty"`
}

// BulkGenerateResult succeeds when at least one order was invoiced.
type BulkGenerateResult struct {
	Result
	SuccessCount int                `json:"success_count"`
	FailureCount int                `json:"failure_count"`
	Items        []BulkGenerateItem `json:"items"`
}

type RaiseResult struct {
	Result
	InvoiceID string `json:"invoice_id,omitempty"`
	Raised    bool   `json:"raised"`
}

// BulkRaiseResult reports how many invoices actually moved to raised.
type BulkRaiseResult struct {
	Result
	Requested int      `json:"requested"`
	Count     int      `json:"count"`
	Raised    []string `json:"raised"`
}

// DocumentResult carries a PDF data URI.
type DocumentResult struct {
	Result
	InvoiceID     string `json:"invoice_id,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Document      string `json:"document,omitempty"`
	FileName      string `json:"file_name,omitempty"`
}

type LookupResult struct {
	Result
	Invoice *InvoiceView `json:"invoice,omitempty"`
}

type DeleteResult struct {
	Result
	InvoiceID string `json:"invoice_id,omitempty"`
}

// InvoiceView is the JSON projection of an invoice without its document.
type InvoiceView struct {
	ID                string        `json:"id"`
	OrderID           string        `json:"order_id"`
	InvoiceNumber     string        `json:"invoice_number"`
	OrderNumber       string        `json:"order_number"`
	Status            InvoiceStatus `json:"status"`
	InvoiceDate       time.Time     `json:"invoice_date"`
	OrderDate         time.Time     `json:"order_date"`
	CustomerName      string        `json:"customer_name"`
	CustomerEmail     string        `json:"customer_email"`
	LineItems         []LineItem    `json:"line_items"`
	SubtotalBeforeTax int64         `json:"subtotal_before_tax"`
	TaxRate           float64       `json:"tax_rate"`
	TaxAmount         int64         `json:"tax_amount"`
	ShippingAmount    int64         `json:"shipping_amount"`
	DiscountAmount    int64         `json:"discount_amount"`
	GrandTotal        int64         `json:"grand_total"`
	CreatedAt         time.Time     `json:"created_at"`
	RaisedAt          *time.Time    `json:"raised_at,omitempty"`
	DownloadedAt      *time.Time    `json:"downloaded_at,omitempty"`
}

// Service is the caller-facing invoice lifecycle.
type Service interface {
	GenerateInvoice(ctx context.Context, orderID string) GenerateResult
	BulkGenerateInvoices(ctx context.Context, orderIDs []string) BulkGenerateResult
	RaiseInvoice(ctx context.Context, invoiceID string) RaiseResult
	BulkRaiseInvoices(ctx context.Context, invoiceIDs []string) BulkRaiseResult
	PreviewInvoice(ctx context.Context, invoiceID string) DocumentResult
	DownloadInvoice(ctx context.Context, invoiceID string, orderID *string) DocumentResult
	GetInvoiceByOrderID(ctx context.Context, orderID string) LookupResult
	DeleteInvoice(ctx context.Context, invoiceID string) DeleteResult
}

const (
	ListTabGenerated = "generated"
	ListTabIssued    = "issued"
)

type ListInvoicesRequest struct {
	pagination.Pagination
	Tab string
}

type ListInvoicesResponse struct {
	pagination.PageInfo
	Invoices []InvoiceView `json:"invoices"`
}

type ListEligibleOrdersResponse struct {
	pagination.PageInfo
	Orders []orderdomain.EligibleOrder `json:"orders"`
}

type ExportRequest struct {
	Statuses []InvoiceStatus
	From     *time.Time
	To       *time.Time
}

// QueryService holds the read projections behind the dashboard tabs.
type QueryService interface {
	ListEligibleOrders(ctx context.Context, page pagination.Pagination) (ListEligibleOrdersResponse, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) (ListInvoicesResponse, error)
	GetInvoice(ctx context.Context, invoiceID string) (InvoiceView, error)
	ExportRegister(ctx context.Context, req ExportRequest) ([]Invoice, error)
}

// Renderer turns invoice data into a PDF data URI.
type Renderer interface {
	Render(ctx context.Context, data InvoiceData) (string, error)
}

// NumberIssuer mints invoice numbers that are never reused.
type NumberIssuer interface {
	Issue(ctx context.Context, issuedAt time.Time) (string, error)
}

// Notifier is told about raised invoices. Delivery is best effort.
type Notifier interface {
	InvoiceRaised(ctx context.Context, invoice Invoice) error
}

// Locker guards one unit of work across nodes. A false ok means someone
// else holds the key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
