package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/internal/invoice/format"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Config *config.InvoiceConfigHolder
}

// Issuer mints invoice numbers from a single sequence row. The increment
// is one atomic statement so concurrent callers never share a value, and
// values are never handed back.
type Issuer struct {
	db  *gorm.DB
	cfg *config.InvoiceConfigHolder
}

func NewIssuer(p Params) domain.NumberIssuer {
	return &Issuer{db: p.DB, cfg: p.Config}
}

func (i *Issuer) Issue(ctx context.Context, issuedAt time.Time) (string, error) {
	doc := i.cfg.Get()

	seq, err := i.next(ctx, doc.SequenceName, issuedAt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrNumberUnavailable, err)
	}

	number, err := format.FormatInvoiceNumber(doc.NumberTemplate, issuedAt, seq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrNumberUnavailable, err)
	}
	return number, nil
}

func (i *Issuer) next(ctx context.Context, name string, now time.Time) (int64, error) {
	db := i.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&domain.InvoiceSequence{Name: name, LastValue: 0, UpdatedAt: now}).Error
	if err != nil {
		return 0, err
	}

	if db.Dialector.Name() == "mysql" {
		return i.nextMySQL(ctx, name, now)
	}

	var value int64
	err = db.Raw(
		`UPDATE invoice_sequences
		SET last_value = last_value + 1, updated_at = ?
		WHERE name = ?
		RETURNING last_value`,
		now,
		name,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("sequence %q did not advance", name)
	}
	return value, nil
}

// nextMySQL uses LAST_INSERT_ID(expr), which is scoped to the connection,
// so both statements run in one transaction.
func (i *Issuer) nextMySQL(ctx context.Context, name string, now time.Time) (int64, error) {
	var value int64
	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE invoice_sequences
			SET last_value = LAST_INSERT_ID(last_value + 1), updated_at = ?
			WHERE name = ?`,
			now,
			name,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("sequence %q did not advance", name)
		}
		return tx.Raw(`SELECT LAST_INSERT_ID()`).Scan(&value).Error
	})
	return value, err
}
