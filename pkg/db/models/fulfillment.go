package models

import (
	"time"

	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
)

// OrderFulfillment is one nursery's slice of an order. An order may carry
// several, each proposed first and confirmed as a set.
type OrderFulfillment struct {
	ID            int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID       int64                  `gorm:"column:order_id;not null;index"`
	NurseryID     *int64                 `gorm:"column:nursery_id"`
	Nursery       *Nursery               `gorm:"foreignKey:NurseryID"`
	Status        enums.FulfillmentStatus `gorm:"column:status;type:text;not null;default:'proposed'"`
	DeliveryName  *string                `gorm:"column:delivery_name"`
	DeliveryPhone *string                `gorm:"column:delivery_phone"`
	DeliveryNotes *string                `gorm:"column:delivery_notes"`
	Items         []OrderFulfillmentItem `gorm:"foreignKey:FulfillmentID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderFulfillmentItem assigns a quantity of one order line to a fulfillment.
type OrderFulfillmentItem struct {
	ID            int64 `gorm:"column:id;primaryKey;autoIncrement"`
	FulfillmentID int64 `gorm:"column:fulfillment_id;not null;index"`
	OrderItemID   int64 `gorm:"column:order_item_id;not null"`
	Quantity      int   `gorm:"column:quantity;not null"`
}
