package invoice

import (
	"github.com/smallbiznis/storefront/internal/clock"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/internal/invoice/export"
	"github.com/smallbiznis/storefront/internal/invoice/numbering"
	"github.com/smallbiznis/storefront/internal/invoice/repository"
	"github.com/smallbiznis/storefront/internal/invoice/service"
	"github.com/smallbiznis/storefront/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(numbering.NewIssuer),
	fx.Provide(provideLocker),
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
	fx.Provide(service.NewQueryService),
	fx.Provide(export.NewExporter),
)

// provideLocker prefers the shared redis lock and falls back to an
// in-process lock when redis is not configured.
func provideLocker(cfg config.Config, redisLock *ratelimit.Locker, c clock.Clock, log *zap.Logger) domain.Locker {
	if !cfg.Invoice.LockEnabled {
		log.Info("invoice generation lock disabled")
		return nil
	}
	if redisLock != nil {
		return redisLock
	}
	log.Info("redis not configured, using in-process generation lock")
	return ratelimit.NewLocalLocker(c.Now)
}
