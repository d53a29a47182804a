package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/pkg/db/option"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Reader {
	return &repo{}
}

func (r *repo) Load(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Snapshot, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Take(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	var items []domain.OrderItem
	err = db.WithContext(ctx).
		Model(&domain.OrderItem{}).
		Where("order_id = ?", id).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return toSnapshot(order, items), nil
}

// ListEligible returns invoiceable orders that have no invoice row yet,
// newest first, fetching one extra row for page detection.
func (r *repo) ListEligible(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.EligibleOrder, error) {
	var orders []domain.Order
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("payment_status IN ?", domain.InvoiceablePaymentStatuses).
		Where("NOT EXISTS (SELECT 1 FROM invoices i WHERE i.order_id = orders.id)")
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	out := make([]*domain.EligibleOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, &domain.EligibleOrder{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			CustomerName:  o.BillingAddress.Data().Name,
			PaymentStatus: o.PaymentStatus,
			TotalAmount:   o.TotalAmount,
			CreatedAt:     o.CreatedAt,
		})
	}
	return out, nil
}

func toSnapshot(order domain.Order, items []domain.OrderItem) *domain.Snapshot {
	snap := &domain.Snapshot{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		Subtotal:       order.Subtotal,
		ShippingAmount: order.ShippingAmount,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
		Billing:        order.BillingAddress.Data(),
		Shipping:       order.ShippingAddress.Data(),
		CreatedAt:      order.CreatedAt,
		Items:          make([]domain.SnapshotItem, 0, len(items)),
	}
	for _, item := range items {
		snap.Items = append(snap.Items, domain.SnapshotItem{
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Size:        item.Size,
			Color:       item.Color,
			Material:    item.Material,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}
	return snap
}
