package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order_not_found")

// Reader loads order snapshots. It never filters by payment status.
type Reader interface {
	Load(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Snapshot, error)
	ListEligible(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*EligibleOrder, error)
}
