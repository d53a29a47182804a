// Package domain contains persistence models and contracts for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/smallbiznis/storefront/internal/settings/domain"
	"gorm.io/datatypes"
)

// InvoiceStatus is the one-way lifecycle generated -> raised -> downloaded.
type InvoiceStatus string

const (
	InvoiceStatusGenerated  InvoiceStatus = "generated"
	InvoiceStatusRaised     InvoiceStatus = "raised"
	InvoiceStatusDownloaded InvoiceStatus = "downloaded"
)

// Issued reports whether the invoice is visible to the customer.
func (s InvoiceStatus) Issued() bool {
	return s == InvoiceStatusRaised || s == InvoiceStatusDownloaded
}

// IssuedStatuses are the statuses of customer-visible invoices.
var IssuedStatuses = []InvoiceStatus{InvoiceStatusRaised, InvoiceStatusDownloaded}

// LineItem is one printed invoice line. Amounts are whole currency units.
type LineItem struct {
	Description string `json:"description"`
	SKU         string `json:"sku,omitempty"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Amount      int64  `json:"amount"`
}

// InvoiceData is everything needed to render an invoice document.
type InvoiceData struct {
	InvoiceNumber     string
	OrderNumber       string
	InvoiceDate       time.Time
	OrderDate         time.Time
	Company           settingsdomain.CompanySettings
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	BillingAddress    string
	ShippingAddress   string
	ShippingName      string
	ShippingPhone     string
	LineItems         []LineItem
	SubtotalBeforeTax int64
	TaxRate           float64
	TaxAmount         int64
	ShippingAmount    int64
	DiscountAmount    int64
	GrandTotal        int64
	TermsText         string
}

// Invoice is the invoices row. It duplicates InvoiceData so the document
// can be rebuilt without the order.
type Invoice struct {
	ID                snowflake.ID                                       `gorm:"primaryKey"`
	OrderID           snowflake.ID                                       `gorm:"not null;uniqueIndex:ux_invoices_order_id"`
	InvoiceNumber     string                                             `gorm:"type:text;not null;uniqueIndex:ux_invoices_invoice_number"`
	Status            InvoiceStatus                                      `gorm:"type:text;not null;default:'generated';index;check:chk_invoices_status,status IN ('generated','raised','downloaded')"`
	Document          string                                             `gorm:"type:text;not null"`
	OrderNumber       string                                             `gorm:"type:text;not null"`
	InvoiceDate       time.Time                                          `gorm:"not null"`
	OrderDate         time.Time                                          `gorm:"not null"`
	Company           datatypes.JSONType[settingsdomain.CompanySettings] `gorm:"type:jsonb;not null"`
	CustomerName      string                                             `gorm:"type:text;not null;default:''"`
	CustomerEmail     string                                             `gorm:"type:text;not null;default:''"`
	CustomerPhone     string                                             `gorm:"type:text;not null;default:''"`
	BillingAddress    string                                             `gorm:"type:text;not null;default:''"`
	ShippingAddress   string                                             `gorm:"type:text;not null;default:''"`
	ShippingName      string                                             `gorm:"type:text;not null;default:''"`
	ShippingPhone     string                                             `gorm:"type:text;not null;default:''"`
	LineItems         datatypes.JSONSlice[LineItem]                      `gorm:"type:jsonb;not null"`
	SubtotalBeforeTax int64                                              `gorm:"not null;default:0"`
	TaxRate           float64                                            `gorm:"not null;default:0"`
	TaxAmount         int64                                              `gorm:"not null;default:0"`
	ShippingAmount    int64                                              `gorm:"not null;default:0"`
	DiscountAmount    int64                                              `gorm:"not null;default:0"`
	GrandTotal        int64                                              `gorm:"not null;default:0"`
	TermsText         string                                             `gorm:"type:text;not null;default:''"`
	CreatedAt         time.Time                                          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time                                          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	RaisedAt          *time.Time                                         `gorm:""`
	DownloadedAt      *time.Time                                         `gorm:""`
}

func (Invoice) TableName() string { return "invoices" }

// Data rebuilds the render input from the stored row.
func (i Invoice) Data() InvoiceData {
	items := make([]LineItem, len(i.LineItems))
	copy(items, i.LineItems)
	return InvoiceData{
		InvoiceNumber:     i.InvoiceNumber,
		OrderNumber:       i.OrderNumber,
		InvoiceDate:       i.InvoiceDate,
		OrderDate:         i.OrderDate,
		Company:           i.Company.Data(),
		CustomerName:      i.CustomerName,
		CustomerEmail:     i.CustomerEmail,
		CustomerPhone:     i.CustomerPhone,
		BillingAddress:    i.BillingAddress,
		ShippingAddress:   i.ShippingAddress,
		ShippingName:      i.ShippingName,
		ShippingPhone:     i.ShippingPhone,
		LineItems:         items,
		SubtotalBeforeTax: i.SubtotalBeforeTax,
		TaxRate:           i.TaxRate,
		TaxAmount:         i.TaxAmount,
		ShippingAmount:    i.ShippingAmount,
		DiscountAmount:    i.DiscountAmount,
		GrandTotal:        i.GrandTotal,
		TermsText:         i.TermsText,
	}
}

// NewInvoice builds a generated row from data and its rendered document.
func NewInvoice(id, orderID snowflake.ID, data InvoiceData, document string, now time.Time) Invoice {
	return Invoice{
		ID:                id,
		OrderID:           orderID,
		InvoiceNumber:     data.InvoiceNumber,
		Status:            InvoiceStatusGenerated,
		Document:          document,
		OrderNumber:       data.OrderNumber,
		InvoiceDate:       data.InvoiceDate,
		OrderDate:         data.OrderDate,
		Company:           datatypes.NewJSONType(data.Company),
		CustomerName:      data.CustomerName,
		CustomerEmail:     data.CustomerEmail,
		CustomerPhone:     data.CustomerPhone,
		BillingAddress:    data.BillingAddress,
		ShippingAddress:   data.ShippingAddress,
		ShippingName:      data.ShippingName,
		ShippingPhone:     data.ShippingPhone,
		LineItems:         datatypes.NewJSONSlice(data.LineItems),
		SubtotalBeforeTax: data.SubtotalBeforeTax,
		TaxRate:           data.TaxRate,
		TaxAmount:         data.TaxAmount,
		ShippingAmount:    data.ShippingAmount,
		DiscountAmount:    data.DiscountAmount,
		GrandTotal:        data.GrandTotal,
		TermsText:         data.TermsText,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// InvoiceSequence backs invoice number issuance. LastValue only grows.
type InvoiceSequence struct {
	Name      string    `gorm:"primaryKey;type:text"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InvoiceSequence) TableName() string { return "invoice_sequences" }
