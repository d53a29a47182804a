package migration

import (
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBAutoMigrate {
			log.Info("automatic migrations disabled")
			return nil
		}

		if err := Run(conn); err != nil {
			return err
		}

		return seed.EnsureDefaultSettings(conn, cfg.Invoice.BrandName)
	}),
)
