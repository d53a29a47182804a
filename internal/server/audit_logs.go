package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/storefront/internal/audit/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type auditLogFilter struct {
	pagination.Pagination
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	ActorType  string `form:"actor_type"`
	From       string `form:"from"`
	To         string `form:"to"`
}

func (f auditLogFilter) request() (auditdomain.ListAuditLogRequest, error) {
	from, err := parseOptionalTime(f.From, false)
	if err != nil {
		return auditdomain.ListAuditLogRequest{}, newValidationError("from", "invalid_from", "from must be RFC3339 or YYYY-MM-DD")
	}
	to, err := parseOptionalTime(f.To, true)
	if err != nil {
		return auditdomain.ListAuditLogRequest{}, newValidationError("to", "invalid_to", "to must be RFC3339 or YYYY-MM-DD")
	}
	if from != nil && to != nil && to.Before(*from) {
		return auditdomain.ListAuditLogRequest{}, newValidationError("to", "invalid_range", "to is before from")
	}

	f.PageToken = strings.TrimSpace(f.PageToken)
	return auditdomain.ListAuditLogRequest{
		Pagination: f.Pagination,
		Action:     strings.TrimSpace(f.Action),
		TargetType: strings.TrimSpace(f.TargetType),
		TargetID:   strings.TrimSpace(f.TargetID),
		ActorType:  strings.TrimSpace(f.ActorType),
		StartAt:    from,
		EndAt:      to,
	}, nil
}

// ListAuditLogs serves the generation and settings audit trail.
func (s *Server) ListAuditLogs(c *gin.Context) {
	var filter auditLogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req, err := filter.request()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.writeAuditPage(c, req)
}

// InvoiceHistory lists the audit trail of one invoice.
func (s *Server) InvoiceHistory(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	invoiceID, err := parseOptionalSnowflakeID(c.Param("id"))
	if err != nil || invoiceID == nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}
	s.writeAuditPage(c, auditdomain.ListAuditLogRequest{
		Pagination: page,
		TargetType: auditdomain.TargetInvoice,
		TargetID:   invoiceID.String(),
	})
}

func (s *Server) writeAuditPage(c *gin.Context, req auditdomain.ListAuditLogRequest) {
	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp.AuditLogs, "page_info": resp.PageInfo})
}
