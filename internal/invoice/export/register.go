// Package export writes the invoice register as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/internal/observability/tracing"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	SheetName   = "Invoices"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

var header = []any{
	"Invoice Number",
	"Invoice Date",
	"Order Number",
	"Order Date",
	"Status",
	"Customer",
	"Customer Email",
	"Taxable Value",
	"GST Rate (%)",
	"GST Amount",
	"Shipping",
	"Discount",
	"Grand Total",
	"Raised At",
	"Downloaded At",
}

type Params struct {
	fx.In

	Query domain.QueryService
	Log   *zap.Logger
}

// Exporter renders the register for a status and date filter.
type Exporter struct {
	query domain.QueryService
	log   *zap.Logger
}

func NewExporter(p Params) *Exporter {
	return &Exporter{query: p.Query, log: p.Log.Named("invoice.export")}
}

// Write streams the register workbook to w and reports how many invoices
// it holds.
func (e *Exporter) Write(ctx context.Context, w io.Writer, req domain.ExportRequest) (int, error) {
	ctx, span := tracing.Start(ctx, "invoice.export")
	invoices, err := e.query.ExportRegister(ctx, req)
	if err != nil {
		tracing.End(span, err)
		return 0, err
	}
	span.SetAttributes(attribute.Int("invoice.count", len(invoices)))

	err = WriteRegister(w, invoices)
	tracing.End(span, err)
	if err != nil {
		return 0, err
	}
	e.log.Info("invoice register exported", zap.Int("invoices", len(invoices)))
	return len(invoices), nil
}

// WriteRegister writes one header row and one row per invoice.
func WriteRegister(w io.Writer, invoices []domain.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "O", 18); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	for i, inv := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			inv.InvoiceNumber,
			inv.InvoiceDate.Format(dateLayout),
			inv.OrderNumber,
			inv.OrderDate.Format(dateLayout),
			string(inv.Status),
			inv.CustomerName,
			inv.CustomerEmail,
			inv.SubtotalBeforeTax,
			inv.TaxRate,
			inv.TaxAmount,
			inv.ShippingAmount,
			inv.DiscountAmount,
			inv.GrandTotal,
			optionalDate(inv.RaisedAt),
			optionalDate(inv.DownloadedAt),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
