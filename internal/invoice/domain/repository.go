package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Statuses []InvoiceStatus
	From     *time.Time
	To       *time.Time
}

// Repository persists invoices. Transition methods are conditional on the
// expected prior status and return the number of rows they changed.
type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*Invoice, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Invoice, error)
	FindByOrderIDWithStatus(ctx context.Context, db *gorm.DB, orderID snowflake.ID, statuses []InvoiceStatus) (*Invoice, error)
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) (bool, error)
	MarkRaised(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error)
	MarkRaisedMany(ctx context.Context, db *gorm.DB, ids []snowflake.ID, at time.Time) ([]snowflake.ID, error)
	MarkDownloaded(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (int64, error)
	DeleteGenerated(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Invoice, error)
	ListAll(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Invoice, error)
}
