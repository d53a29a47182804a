// Package domain holds the read-only order projection the invoice core consumes.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Invoiceable reports whether payment has settled far enough to invoice.
func (s PaymentStatus) Invoiceable() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCompleted
}

// InvoiceablePaymentStatuses lists the payment states that allow invoicing.
var InvoiceablePaymentStatuses = []PaymentStatus{PaymentStatusPaid, PaymentStatusCompleted}

// Party is a billing or shipping contact.
type Party struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// Order is the orders row. Amounts are whole currency units.
type Order struct {
	ID              snowflake.ID              `gorm:"primaryKey"`
	OrderNumber     string                    `gorm:"type:text;not null;uniqueIndex"`
	Status          string                    `gorm:"type:text;not null"`
	PaymentStatus   PaymentStatus             `gorm:"type:text;not null;index"`
	Subtotal        int64                     `gorm:"not null;default:0"`
	ShippingAmount  int64                     `gorm:"not null;default:0"`
	DiscountAmount  int64                     `gorm:"not null;default:0"`
	TotalAmount     int64                     `gorm:"not null;default:0"`
	BillingAddress  datatypes.JSONType[Party] `gorm:"type:jsonb;not null"`
	ShippingAddress datatypes.JSONType[Party] `gorm:"type:jsonb;not null"`
	CreatedAt       time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrderID     snowflake.ID `gorm:"not null;index"`
	Position    int          `gorm:"not null;default:0"`
	ProductName string       `gorm:"type:text;not null"`
	SKU         string       `gorm:"column:sku;type:text"`
	Size        string       `gorm:"type:text"`
	Color       string       `gorm:"type:text"`
	Material    string       `gorm:"type:text"`
	UnitPrice   int64        `gorm:"not null"`
	Quantity    int64        `gorm:"not null"`
	LineTotal   int64        `gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

type SnapshotItem struct {
	ProductName string
	SKU         string
	Size        string
	Color       string
	Material    string
	UnitPrice   int64
	Quantity    int64
	LineTotal   int64
}

// Snapshot is the immutable view of an order at invoice time.
type Snapshot struct {
	ID             snowflake.ID
	OrderNumber    string
	Status         string
	PaymentStatus  PaymentStatus
	Subtotal       int64
	ShippingAmount int64
	DiscountAmount int64
	TotalAmount    int64
	Billing        Party
	Shipping       Party
	Items          []SnapshotItem
	CreatedAt      time.Time
}

// EligibleOrder is a paid order that has no invoice yet.
type EligibleOrder struct {
	ID            snowflake.ID  `json:"id"`
	OrderNumber   string        `json:"order_number"`
	CustomerName  string        `json:"customer_name"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TotalAmount   int64         `json:"total_amount"`
	CreatedAt     time.Time     `json:"created_at"`
}
