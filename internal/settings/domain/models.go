package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	CategoryShop    = "shop"
	CategoryBilling = "billing"
)

const (
	KeyStoreName          = "store_name"
	KeyStoreAddress       = "store_address"
	KeyStorePhone         = "store_phone"
	KeyStoreEmail         = "store_email"
	KeyGSTNumber          = "gst_number"
	KeyPANNumber          = "pan_number"
	KeyInvoiceHeaderImage = "invoice_header_image"
	KeyInvoiceFooterImage = "invoice_footer_image"
	KeyEnableGST          = "enable_gst"
	KeyTaxRate            = "tax_rate"
)

type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeBoolean DataType = "boolean"
	DataTypeJSON    DataType = "json"
)

// Setting is one key/value row of the settings table.
type Setting struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Category  string       `gorm:"type:text;not null;uniqueIndex:ux_settings_category_key"`
	Key       string       `gorm:"type:text;not null;uniqueIndex:ux_settings_category_key"`
	Value     string       `gorm:"type:text;not null;default:''"`
	DataType  DataType     `gorm:"type:text;not null;default:'string'"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Setting) TableName() string { return "settings" }

// CompanySettings is the seller identity printed on invoices.
type CompanySettings struct {
	StoreName      string `json:"store_name"`
	StoreAddress   string `json:"store_address"`
	StorePhone     string `json:"store_phone"`
	StoreEmail     string `json:"store_email"`
	GSTNumber      string `json:"gst_number"`
	PANNumber      string `json:"pan_number,omitempty"`
	HeaderImageURL string `json:"header_image_url,omitempty"`
	FooterImageURL string `json:"footer_image_url,omitempty"`
}

// TaxConfig is the single inclusive GST rate. Rate is zero whenever
// Enabled is false.
type TaxConfig struct {
	Enabled bool    `json:"enabled"`
	Rate    float64 `json:"rate"`
}

// Resolved is one consistent read of company and tax settings.
// Degraded marks a read that fell back to defaults because the store
// could not be reached.
type Resolved struct {
	Company  CompanySettings
	Tax      TaxConfig
	Degraded bool
	LoadedAt time.Time
}
