package service

import (
	"context"
	"time"

	"github.com/smallbiznis/storefront/internal/cache"
	"github.com/smallbiznis/storefront/internal/clock"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/observability/metrics"
	"github.com/smallbiznis/storefront/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const resolvedKey = "invoice_settings"

var categories = []string{domain.CategoryShop, domain.CategoryBilling}

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *metrics.Metrics        `optional:"true"`
	Prom    *metrics.InvoiceMetrics `optional:"true"`
}

type Resolver struct {
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.Metrics
	prom    *metrics.InvoiceMetrics

	brandName string
	ttl       time.Duration
	cache     cache.Cache[string, domain.Resolved]
}

func NewResolver(p Params) domain.Resolver {
	return newResolver(p)
}

func newResolver(p Params) *Resolver {
	brand := p.Config.Invoice.BrandName
	if brand == "" {
		brand = "Storefront"
	}
	return &Resolver{
		log:       p.Log.Named("settings.resolver"),
		clock:     p.Clock,
		repo:      p.Repo,
		metrics:   p.Metrics,
		prom:      p.Prom,
		brandName: brand,
		ttl:       p.Config.Invoice.SettingsTTL,
		cache:     cache.ForTTL(p.Config.Invoice.SettingsTTL, cache.WithNow[string, domain.Resolved](p.Clock.Now)),
	}
}

// Resolve returns cached settings when fresh, otherwise reads the store.
// A failed read yields defaults with Degraded set and is not cached.
func (r *Resolver) Resolve(ctx context.Context) domain.Resolved {
	if cached, ok := r.cache.Get(resolvedKey); ok {
		r.metrics.RecordSettingsRead(ctx, "cache")
		return cached
	}

	rows, err := r.repo.ListByCategories(ctx, categories)
	if err != nil {
		r.log.Warn("settings store unavailable, using defaults", zap.Error(err))
		r.metrics.RecordSettingsRead(ctx, "defaults")
		r.prom.RecordSettingsDegraded()

		company, taxCfg := defaults(r.brandName)
		return domain.Resolved{
			Company:  company,
			Tax:      taxCfg,
			Degraded: true,
			LoadedAt: r.clock.Now(),
		}
	}

	company, taxCfg := mapSettings(rows, r.brandName)
	resolved := domain.Resolved{
		Company:  company,
		Tax:      taxCfg,
		LoadedAt: r.clock.Now(),
	}
	r.cache.Set(resolvedKey, resolved, r.ttl)
	r.metrics.RecordSettingsRead(ctx, "store")
	return resolved
}

func (r *Resolver) LoadCompanySettings(ctx context.Context) (domain.CompanySettings, bool) {
	resolved := r.Resolve(ctx)
	return resolved.Company, resolved.Degraded
}

func (r *Resolver) LoadTaxConfig(ctx context.Context) (domain.TaxConfig, bool) {
	resolved := r.Resolve(ctx)
	return resolved.Tax, resolved.Degraded
}

// Invalidate drops the cached read so the next call hits the store.
func (r *Resolver) Invalidate() {
	r.cache.Purge()
	r.log.Info("settings cache invalidated")
}
