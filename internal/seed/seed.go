package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	settingsdomain "github.com/smallbiznis/storefront/internal/settings/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureDefaultSettings inserts the invoice settings rows an admin is
// expected to edit. Existing rows are left untouched.
func EnsureDefaultSettings(db *gorm.DB, brandName string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	rows := []settingsdomain.Setting{
		{Category: settingsdomain.CategoryShop, Key: settingsdomain.KeyStoreName, Value: brandName, DataType: settingsdomain.DataTypeString},
		{Category: settingsdomain.CategoryShop, Key: settingsdomain.KeyStoreAddress, DataType: settingsdomain.DataTypeString},
		{Category: settingsdomain.CategoryShop, Key: settingsdomain.KeyStorePhone, DataType: settingsdomain.DataTypeString},
		{Category: settingsdomain.CategoryShop, Key: settingsdomain.KeyStoreEmail, DataType: settingsdomain.DataTypeString},
		{Category: settingsdomain.CategoryBilling, Key: settingsdomain.KeyGSTNumber, DataType: settingsdomain.DataTypeString},
		{Category: settingsdomain.CategoryBilling, Key: settingsdomain.KeyEnableGST, Value: "false", DataType: settingsdomain.DataTypeBoolean},
		{Category: settingsdomain.CategoryBilling, Key: settingsdomain.KeyTaxRate, Value: "0", DataType: settingsdomain.DataTypeNumber},
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].ID = node.Generate()
		rows[i].UpdatedAt = now
	}

	return db.WithContext(context.Background()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category"}, {Name: "key"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

// EnsureDemoOrders adds count paid orders for local development. It is a
// no-op once any order exists.
func EnsureDemoOrders(db *gorm.DB, count int) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}
	if count <= 0 {
		return 0, nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return 0, err
	}

	ctx := context.Background()
	var existing int64
	if err := db.WithContext(ctx).Model(&orderdomain.Order{}).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 1; i <= count; i++ {
			order, items := demoOrder(node, i, now.Add(-time.Duration(count-i)*time.Hour))
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func demoOrder(node *snowflake.Node, n int, createdAt time.Time) (orderdomain.Order, []orderdomain.OrderItem) {
	party := orderdomain.Party{
		Name:         fmt.Sprintf("Demo Customer %d", n),
		AddressLine1: fmt.Sprintf("%d Residency Road", n),
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560025",
		Country:      "India",
		Email:        fmt.Sprintf("customer%d@example.com", n),
		Phone:        "+91 80 4000 0000",
	}
	id := node.Generate()
	items := []orderdomain.OrderItem{
		{ID: node.Generate(), OrderID: id, Position: 0, ProductName: "Handloom Saree", SKU: "HS-01", Color: "Maroon", Material: "Silk", UnitPrice: 2360, Quantity: 1, LineTotal: 2360},
		{ID: node.Generate(), OrderID: id, Position: 1, ProductName: "Cotton Kurta", SKU: "CK-02", Size: "L", Color: "White", UnitPrice: 590, Quantity: int64(n%3 + 1), LineTotal: 590 * int64(n%3+1)},
	}
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal
	}
	shipping := int64(0)
	if subtotal < 3000 {
		shipping = 99
	}
	order := orderdomain.Order{
		ID:              id,
		OrderNumber:     fmt.Sprintf("DEMO-%04d", n),
		Status:          "delivered",
		PaymentStatus:   orderdomain.PaymentStatusPaid,
		Subtotal:        subtotal,
		ShippingAmount:  shipping,
		TotalAmount:     subtotal + shipping,
		BillingAddress:  datatypes.NewJSONType(party),
		ShippingAddress: datatypes.NewJSONType(party),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	return order, items
}
