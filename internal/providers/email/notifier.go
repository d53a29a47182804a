package email

import (
	"context"
	"strings"

	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/internal/providers/pdf"
)

const templateInvoiceRaised = "invoice_raised"

// InvoiceNotifier mails the customer when an invoice is raised.
type InvoiceNotifier struct {
	provider Provider
}

func NewInvoiceNotifier(provider Provider) domain.Notifier {
	return &InvoiceNotifier{provider: provider}
}

func (n *InvoiceNotifier) InvoiceRaised(ctx context.Context, invoice domain.Invoice) error {
	to := strings.TrimSpace(invoice.CustomerEmail)
	if to == "" {
		return ErrNoRecipients
	}
	company := invoice.Company.Data()
	return n.provider.SendTemplate(ctx, []string{to}, templateInvoiceRaised, TemplateData{
		Subject: "Invoice " + invoice.InvoiceNumber + " from " + company.StoreName,
		Fields: map[string]string{
			"customer_name":  invoice.CustomerName,
			"invoice_number": invoice.InvoiceNumber,
			"order_number":   invoice.OrderNumber,
			"store_name":     company.StoreName,
			"grand_total":    pdf.FormatMoney(invoice.GrandTotal),
		},
	})
}
