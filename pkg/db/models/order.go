package models

import (
	"time"

	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
)

// Order is a placed cart. Monetary totals are integer cents; status
// transitions are owned by the server.
type Order struct {
	ID              int64              `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          *int64             `gorm:"column:user_id"`
	Status          enums.OrderStatus  `gorm:"column:status;type:text;not null;default:'draft'"`
	SubtotalCents   int                `gorm:"column:subtotal_cents;not null"`
	ShippingCents   int                `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents        int                `gorm:"column:tax_cents;not null;default:0"`
	TotalCents      int                `gorm:"column:total_cents;not null"`
	Currency        string             `gorm:"column:currency;not null;default:'USD'"`
	Items           []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress *Address           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Fulfillments    []OrderFulfillment `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots name and unit price at order time; the product link is
// severed (not the snapshot) if the product is later deleted.
type OrderItem struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID        int64  `gorm:"column:order_id;not null"`
	ProductID      *int64 `gorm:"column:product_id"`
	Quantity       int    `gorm:"column:quantity;not null"`
	UnitPriceCents int    `gorm:"column:unit_price_cents;not null"`
	ProductName    string `gorm:"column:product_name;not null"`
}

// Address is the shipping destination attached to exactly one order.
type Address struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID       int64   `gorm:"column:order_id;uniqueIndex;not null"`
	FullName      string  `gorm:"column:full_name;not null"`
	StreetAddress string  `gorm:"column:street_address;not null"`
	City          string  `gorm:"column:city;not null"`
	Commune       *string `gorm:"column:commune"`
	State         *string `gorm:"column:state"`
	PostalCode    string  `gorm:"column:postal_code;not null"`
	Country       string  `gorm:"column:country;not null"`
	Phone         *string `gorm:"column:phone"`
}
