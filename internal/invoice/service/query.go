package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/storefront/internal/invoice/domain"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 250
)

type QueryParams struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Orders orderdomain.Reader
}

// QueryService serves the dashboard tabs. Lists never load documents.
type QueryService struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	orders orderdomain.Reader
}

func NewQueryService(p QueryParams) domain.QueryService {
	return &QueryService{
		db:     p.DB,
		log:    p.Log.Named("invoice.query"),
		repo:   p.Repo,
		orders: p.Orders,
	}
}

// ListEligibleOrders lists paid orders that have no invoice yet.
func (q *QueryService) ListEligibleOrders(ctx context.Context, page pagination.Pagination) (domain.ListEligibleOrdersResponse, error) {
	page, err := normalizePage(page)
	if err != nil {
		return domain.ListEligibleOrdersResponse{}, err
	}

	orders, err := q.orders.ListEligible(ctx, q.db, page)
	if err != nil {
		return domain.ListEligibleOrdersResponse{}, err
	}

	orders, info := pagination.BuildCursorPageInfo(orders, page.PageSize, func(o *orderdomain.EligibleOrder) string {
		return cursorToken(o.ID.Int64(), o.CreatedAt)
	})

	resp := domain.ListEligibleOrdersResponse{Orders: make([]orderdomain.EligibleOrder, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, *o)
	}
	resp.PageInfo = *info
	return resp, nil
}

// ListInvoices lists one tab: generated, or issued (raised and downloaded).
func (q *QueryService) ListInvoices(ctx context.Context, req domain.ListInvoicesRequest) (domain.ListInvoicesResponse, error) {
	var statuses []domain.InvoiceStatus
	switch strings.TrimSpace(req.Tab) {
	case domain.ListTabGenerated:
		statuses = []domain.InvoiceStatus{domain.InvoiceStatusGenerated}
	case domain.ListTabIssued:
		statuses = domain.IssuedStatuses
	default:
		return domain.ListInvoicesResponse{}, domain.ErrInvalidListTab
	}

	page, err := normalizePage(req.Pagination)
	if err != nil {
		return domain.ListInvoicesResponse{}, err
	}

	items, err := q.repo.List(ctx, q.db, domain.ListFilter{Statuses: statuses}, page)
	if err != nil {
		return domain.ListInvoicesResponse{}, err
	}

	items, info := pagination.BuildCursorPageInfo(items, page.PageSize, func(inv *domain.Invoice) string {
		return cursorToken(inv.ID.Int64(), inv.CreatedAt)
	})

	resp := domain.ListInvoicesResponse{Invoices: make([]domain.InvoiceView, 0, len(items))}
	for _, inv := range items {
		resp.Invoices = append(resp.Invoices, ToView(inv))
	}
	resp.PageInfo = *info
	return resp, nil
}

func (q *QueryService) GetInvoice(ctx context.Context, invoiceID string) (domain.InvoiceView, error) {
	id, err := parseID(invoiceID, domain.ErrInvalidInvoiceID)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	inv, err := q.repo.FindByID(ctx, q.db, id)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	if inv == nil {
		return domain.InvoiceView{}, domain.ErrInvoiceNotFound
	}
	return ToView(inv), nil
}

// ExportRegister returns the invoices for a register export, oldest first.
// With no statuses given only issued invoices are exported.
func (q *QueryService) ExportRegister(ctx context.Context, req domain.ExportRequest) ([]domain.Invoice, error) {
	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = domain.IssuedStatuses
	}
	items, err := q.repo.ListAll(ctx, q.db, domain.ListFilter{
		Statuses: statuses,
		From:     req.From,
		To:       req.To,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(items))
	for _, inv := range items {
		out = append(out, *inv)
	}
	q.log.Debug("register exported", zap.Int("invoices", len(out)))
	return out, nil
}

func normalizePage(page pagination.Pagination) (pagination.Pagination, error) {
	if page.PageSize <= 0 {
		page.PageSize = defaultPageSize
	}
	if page.PageSize > maxPageSize {
		page.PageSize = maxPageSize
	}
	token := strings.TrimSpace(page.PageToken)
	if token == "" {
		return page, nil
	}
	cursor, err := pagination.DecodeCursor(token)
	if err != nil {
		return page, domain.ErrInvalidPageToken
	}
	if _, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt); err != nil {
		return page, domain.ErrInvalidPageToken
	}
	if _, err := strconv.ParseInt(cursor.ID, 10, 64); err != nil {
		return page, domain.ErrInvalidPageToken
	}
	page.PageToken = token
	return page, nil
}

func cursorToken(id int64, createdAt time.Time) string {
	token, err := pagination.EncodeCursor(pagination.Cursor{
		ID:        strconv.FormatInt(id, 10),
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ""
	}
	return token
}
