package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/internal/invoice/export"
	invoiceservice "github.com/smallbiznis/storefront/internal/invoice/service"
	"github.com/smallbiznis/storefront/internal/providers/pdf"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type generateInvoiceRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type bulkGenerateRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required"`
}

type bulkRaiseRequest struct {
	InvoiceIDs []string `json:"invoice_ids" binding:"required"`
}

type listInvoicesQuery struct {
	Status    string `form:"status"`
	Tab       string `form:"tab"`
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type exportInvoicesQuery struct {
	Status []string `form:"status"`
	From   string   `form:"from"`
	To     string   `form:"to"`
}

// respond writes a lifecycle result. Failed results keep their body and
// take the status of their error kind.
func respond(c *gin.Context, result invoicedomain.Result, body any) {
	status := http.StatusOK
	if !result.Success {
		status = statusForKind(result.Code)
	}
	c.JSON(status, body)
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("order_id", "required", "order_id is required"))
		return
	}

	res := s.invoiceSvc.GenerateInvoice(c.Request.Context(), req.OrderID)
	if res.Success && !res.Existing {
		c.JSON(http.StatusCreated, res)
		return
	}
	respond(c, res.Result, res)
}

func (s *Server) BulkGenerateInvoices(c *gin.Context) {
	var req bulkGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("order_ids", "required", "order_ids is required"))
		return
	}

	res := s.invoiceSvc.BulkGenerateInvoices(c.Request.Context(), req.OrderIDs)
	if res.Code == invoicedomain.KindInvalidRequest {
		respond(c, res.Result, res)
		return
	}
	// Per-item outcomes are in the body; the batch itself was processed.
	c.JSON(http.StatusOK, res)
}

func (s *Server) RaiseInvoice(c *gin.Context) {
	res := s.invoiceSvc.RaiseInvoice(c.Request.Context(), c.Param("id"))
	respond(c, res.Result, res)
}

func (s *Server) BulkRaiseInvoices(c *gin.Context) {
	var req bulkRaiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("invoice_ids", "required", "invoice_ids is required"))
		return
	}

	res := s.invoiceSvc.BulkRaiseInvoices(c.Request.Context(), req.InvoiceIDs)
	respond(c, res.Result, res)
}

func (s *Server) PreviewInvoice(c *gin.Context) {
	res := s.invoiceSvc.PreviewInvoice(c.Request.Context(), c.Param("id"))
	s.writeDocument(c, res, "inline")
}

func (s *Server) DownloadInvoice(c *gin.Context) {
	var orderID *string
	if raw := strings.TrimSpace(c.Query("order_id")); raw != "" {
		orderID = &raw
	}
	res := s.invoiceSvc.DownloadInvoice(c.Request.Context(), c.Param("id"), orderID)
	s.writeDocument(c, res, "attachment")
}

// writeDocument streams the decoded PDF, or the result itself when the
// caller asks for JSON or the operation failed.
func (s *Server) writeDocument(c *gin.Context, res invoicedomain.DocumentResult, disposition string) {
	if !res.Success || strings.EqualFold(c.Query("format"), "json") {
		respond(c, res.Result, res)
		return
	}

	raw, err := decodeDocument(res.Document)
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: %w", invoicedomain.ErrRenderFailed, err))
		return
	}

	fileName := res.FileName
	if fileName == "" {
		fileName = invoiceservice.FileName(res.InvoiceNumber)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, fileName))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", raw)
}

func decodeDocument(document string) ([]byte, error) {
	if !strings.HasPrefix(document, pdf.DataURIPrefix) {
		return nil, fmt.Errorf("document is not a pdf data uri")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(document, pdf.DataURIPrefix))
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	res := s.invoiceSvc.DeleteInvoice(c.Request.Context(), c.Param("id"))
	respond(c, res.Result, res)
}

func (s *Server) GetInvoiceByOrderID(c *gin.Context) {
	res := s.invoiceSvc.GetInvoiceByOrderID(c.Request.Context(), c.Param("id"))
	respond(c, res.Result, res)
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tab := strings.TrimSpace(query.Status)
	if tab == "" {
		tab = strings.TrimSpace(query.Tab)
	}
	if tab == "" {
		tab = invoicedomain.ListTabGenerated
	}

	resp, err := s.querySvc.ListInvoices(c.Request.Context(), invoicedomain.ListInvoicesRequest{
		Tab: tab,
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	item, err := s.querySvc.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ListEligibleOrders(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.querySvc.ListEligibleOrders(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Orders, "page_info": resp.PageInfo})
}

func (s *Server) ExportInvoices(c *gin.Context) {
	var query exportInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := invoicedomain.ExportRequest{}
	for _, raw := range query.Status {
		for _, part := range strings.Split(raw, ",") {
			status := invoicedomain.InvoiceStatus(strings.TrimSpace(part))
			switch status {
			case "":
				continue
			case invoicedomain.InvoiceStatusGenerated, invoicedomain.InvoiceStatusRaised, invoicedomain.InvoiceStatusDownloaded:
				req.Statuses = append(req.Statuses, status)
			default:
				AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
				return
			}
		}
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		AbortWithError(c, newValidationError("to", "invalid_range", "to is before from"))
		return
	}
	req.From, req.To = from, to

	var buf bytes.Buffer
	if _, err := s.exporter.Write(c.Request.Context(), &buf, req); err != nil {
		AbortWithError(c, err)
		return
	}

	fileName := fmt.Sprintf("invoice-register-%s.xlsx", time.Now().UTC().Format(dateOnlyLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
