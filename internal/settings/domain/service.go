package domain

import (
	"context"
	"errors"
)

type Repository interface {
	ListByCategories(ctx context.Context, categories []string) ([]*Setting, error)
}

// Resolver reads invoice settings through an owned TTL cache.
type Resolver interface {
	Resolve(ctx context.Context) Resolved
	LoadCompanySettings(ctx context.Context) (CompanySettings, bool)
	LoadTaxConfig(ctx context.Context) (TaxConfig, bool)
	Invalidate()
}

var (
	ErrSettingsUnavailable = errors.New("settings_unavailable")
)
