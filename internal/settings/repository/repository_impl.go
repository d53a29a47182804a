package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/storefront/internal/settings/domain"
	"github.com/smallbiznis/storefront/pkg/db/option"
	"github.com/smallbiznis/storefront/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	store repository.Repository[domain.Setting]
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{store: repository.ProvideStore[domain.Setting](db)}
}

func (r *repo) ListByCategories(ctx context.Context, categories []string) ([]*domain.Setting, error) {
	rows, err := r.store.Find(ctx, nil,
		option.ApplyOperator(option.Condition{
			Field:    "category",
			Operator: option.IN,
			Value:    categories,
		}),
		option.WithSortBy("category asc, id asc"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSettingsUnavailable, err)
	}
	return rows, nil
}
