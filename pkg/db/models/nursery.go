package models

import "time"

// Nursery is a physical fulfillment site. InternalName is the admin-facing
// code; customers never see nurseries directly.
type Nursery struct {
	ID           int64              `gorm:"column:id;primaryKey;autoIncrement"`
	InternalName string             `gorm:"column:internal_name;not null"`
	City         string             `gorm:"column:city;not null"`
	Commune      *string            `gorm:"column:commune"`
	Latitude     *float64           `gorm:"column:latitude"`
	Longitude    *float64           `gorm:"column:longitude"`
	Inventory    []NurseryInventory `gorm:"foreignKey:NurseryID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// NurseryInventory is the per-nursery stock count for a product. The pair
// (nursery_id, product_id) is unique.
type NurseryInventory struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	NurseryID int64     `gorm:"column:nursery_id;not null;uniqueIndex:uq_nursery_product"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex:uq_nursery_product"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular table used by the migrations.
func (NurseryInventory) TableName() string { return "nursery_inventory" }
