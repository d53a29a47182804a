package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/storefront/internal/audit/domain"
	"github.com/smallbiznis/storefront/internal/observability/logger"
	obscontext "github.com/smallbiznis/storefront/internal/observability/context"
	"go.uber.org/zap"
)

// InvalidateSettings drops the cached company and tax settings so the
// next generation reads the settings table again.
func (s *Server) InvalidateSettings(c *gin.Context) {
	ctx := c.Request.Context()
	s.settings.Invalidate()

	actorType, actorID := obscontext.ActorFromGin(c)
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	if err := s.auditSvc.AuditLog(ctx, actorType, actor, auditdomain.ActionSettingsCacheInvalided, auditdomain.TargetSettings, nil, nil); err != nil {
		logger.FromContext(ctx).Warn("audit settings invalidation failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Settings cache cleared"})
}
