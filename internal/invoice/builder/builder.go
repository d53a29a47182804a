// Package builder turns an order snapshot and settings into InvoiceData.
// It has no side effects.
package builder

import (
	"strings"
	"time"

	"github.com/smallbiznis/storefront/internal/invoice/domain"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	settingsdomain "github.com/smallbiznis/storefront/internal/settings/domain"
	"github.com/smallbiznis/storefront/internal/tax"
)

// totalEpsilon is the tolerated drift, in currency units, between the
// recomputed grand total and the order total.
const totalEpsilon = 1

// Check describes how the recomputed total compares with the order.
type Check struct {
	OrderTotal int64
	GrandTotal int64
	Mismatch   bool
}

// Build assembles invoice data. The order subtotal is treated as tax
// inclusive when tax is enabled; tax is extracted from it, never added.
func Build(
	snap orderdomain.Snapshot,
	company settingsdomain.CompanySettings,
	taxCfg settingsdomain.TaxConfig,
	invoiceNumber string,
	invoiceDate time.Time,
) (domain.InvoiceData, Check) {
	subtotalBeforeTax := snap.Subtotal
	var taxAmount int64
	rate := 0.0
	if taxCfg.Enabled {
		rate = taxCfg.Rate
		subtotalBeforeTax, taxAmount = tax.SplitInclusive(snap.Subtotal, rate)
	}

	grandTotal := snap.Subtotal + snap.ShippingAmount - snap.DiscountAmount
	diff := grandTotal - snap.TotalAmount
	if diff < 0 {
		diff = -diff
	}

	data := domain.InvoiceData{
		InvoiceNumber:     invoiceNumber,
		OrderNumber:       snap.OrderNumber,
		InvoiceDate:       invoiceDate.UTC(),
		OrderDate:         snap.CreatedAt.UTC(),
		Company:           company,
		CustomerName:      firstNonEmpty(snap.Billing.Name, snap.Shipping.Name),
		CustomerEmail:     firstNonEmpty(snap.Billing.Email, snap.Shipping.Email),
		CustomerPhone:     firstNonEmpty(snap.Billing.Phone, snap.Shipping.Phone),
		BillingAddress:    AddressBlock(snap.Billing),
		ShippingAddress:   AddressBlock(snap.Shipping),
		ShippingName:      firstNonEmpty(snap.Shipping.Name, snap.Billing.Name),
		ShippingPhone:     firstNonEmpty(snap.Shipping.Phone, snap.Billing.Phone),
		LineItems:         lineItems(snap.Items),
		SubtotalBeforeTax: subtotalBeforeTax,
		TaxRate:           rate,
		TaxAmount:         taxAmount,
		ShippingAmount:    snap.ShippingAmount,
		DiscountAmount:    snap.DiscountAmount,
		GrandTotal:        grandTotal,
	}

	return data, Check{
		OrderTotal: snap.TotalAmount,
		GrandTotal: grandTotal,
		Mismatch:   diff > totalEpsilon,
	}
}

// Description joins the product name with its non-empty variant
// descriptors, in size, color, material order.
func Description(name, size, color, material string) string {
	var parts []string
	for _, v := range []string{size, color, material} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	name = strings.TrimSpace(name)
	if len(parts) == 0 {
		return name
	}
	return name + " (" + strings.Join(parts, ", ") + ")"
}

// AddressBlock formats a party address as newline separated lines,
// skipping empty parts.
func AddressBlock(p orderdomain.Party) string {
	cityLine := strings.TrimSpace(strings.Join(nonEmpty(p.City, p.State), ", "))
	if pc := strings.TrimSpace(p.PostalCode); pc != "" {
		cityLine = strings.TrimSpace(cityLine + " - " + pc)
		cityLine = strings.TrimPrefix(cityLine, "- ")
	}
	return strings.Join(nonEmpty(p.AddressLine1, p.AddressLine2, cityLine, p.Country), "\n")
}

func lineItems(items []orderdomain.SnapshotItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.LineItem{
			Description: Description(item.ProductName, item.Size, item.Color, item.Material),
			SKU:         strings.TrimSpace(item.SKU),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.LineTotal,
		})
	}
	return out
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
