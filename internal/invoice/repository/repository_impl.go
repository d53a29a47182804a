package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/pkg/db/option"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	return r.findOne(db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDs loads invoices without their documents.
func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*domain.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var invoices []*domain.Invoice
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Omit("document").
		Where("id IN ?", ids).
		Order("id asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Invoice, error) {
	return r.findOne(db.WithContext(ctx).Where("order_id = ?", orderID))
}

func (r *repo) FindByOrderIDWithStatus(ctx context.Context, db *gorm.DB, orderID snowflake.ID, statuses []domain.InvoiceStatus) (*domain.Invoice, error) {
	return r.findOne(db.WithContext(ctx).Where("order_id = ? AND status IN ?", orderID, statuses))
}

func (r *repo) findOne(stmt *gorm.DB) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := stmt.Model(&domain.Invoice{}).Take(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// Insert writes a generated invoice unless the order already has one.
// It reports false when the unique order_id index absorbed the insert.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(invoice)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) MarkRaised(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices
		SET status = ?, raised_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		domain.InvoiceStatusRaised,
		at,
		at,
		id,
		domain.InvoiceStatusGenerated,
	)
	return res.RowsAffected, res.Error
}

// MarkRaisedMany raises every listed invoice still at generated in one
// statement and returns the ids it moved. MySQL has no RETURNING, so it
// falls back to one conditional update per id.
func (r *repo) MarkRaisedMany(ctx context.Context, db *gorm.DB, ids []snowflake.ID, at time.Time) ([]snowflake.ID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if db.Dialector.Name() == "mysql" {
		var raised []snowflake.ID
		for _, id := range ids {
			n, err := r.MarkRaised(ctx, db, id, at)
			if err != nil {
				return raised, err
			}
			if n == 1 {
				raised = append(raised, id)
			}
		}
		return raised, nil
	}

	var rows []int64
	err := db.WithContext(ctx).Raw(
		`UPDATE invoices
		SET status = ?, raised_at = ?, updated_at = ?
		WHERE id IN ? AND status = ?
		RETURNING id`,
		domain.InvoiceStatusRaised,
		at,
		at,
		ids,
		domain.InvoiceStatusGenerated,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	raised := make([]snowflake.ID, 0, len(rows))
	for _, id := range rows {
		raised = append(raised, snowflake.ID(id))
	}
	return raised, nil
}

func (r *repo) MarkDownloaded(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices
		SET status = ?, downloaded_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		domain.InvoiceStatusDownloaded,
		at,
		at,
		id,
		domain.InvoiceStatusRaised,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteGenerated(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM invoices WHERE id = ? AND status = ?`,
		id,
		domain.InvoiceStatusGenerated,
	)
	return res.RowsAffected, res.Error
}

// List returns one page without documents, newest first.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := r.filtered(db.WithContext(ctx), filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Omit("document").
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// ListAll returns every matching invoice without documents, oldest first.
func (r *repo) ListAll(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := r.filtered(db.WithContext(ctx), filter).
		Omit("document").
		Order("invoice_date asc, id asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) filtered(db *gorm.DB, filter domain.ListFilter) *gorm.DB {
	stmt := db.Model(&domain.Invoice{})
	if len(filter.Statuses) > 0 {
		stmt = stmt.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		stmt = stmt.Where("invoice_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("invoice_date <= ?", filter.To.UTC())
	}
	return stmt
}
