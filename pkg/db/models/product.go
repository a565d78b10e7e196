package models

import (
	"time"

	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
)

// Product is a catalog entry. Prices are integer minor units (cents).
type Product struct {
	ID          int64              `gorm:"column:id;primaryKey;autoIncrement"`
	Slug        string             `gorm:"column:slug;uniqueIndex;not null"`
	Name        string             `gorm:"column:name;not null"`
	Description *string            `gorm:"column:description"`
	PriceCents  int                `gorm:"column:price_cents;not null"`
	Currency    string             `gorm:"column:currency;not null;default:'USD'"`
	Kind        enums.ProductKind  `gorm:"column:kind;type:text;not null"`
	Active      bool               `gorm:"column:active;not null;default:true"`
	Attributes  *ProductAttributes `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Inventory   *Inventory         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductAttributes holds the optional plant-specific metadata for a product.
type ProductAttributes struct {
	ID               int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID        int64                   `gorm:"column:product_id;uniqueIndex;not null"`
	PlantEnvironment *enums.PlantEnvironment `gorm:"column:plant_environment;type:text"`
	Size             *string                 `gorm:"column:size"`
	Color            *string                 `gorm:"column:color"`
	CareInstructions *string                 `gorm:"column:care_instructions"`
}

// Inventory is the derived global stock count for a product: the sum of all
// nursery inventories, recomputed whenever a nursery quantity changes.
type Inventory struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:product_id;uniqueIndex;not null"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular table used by the migrations.
func (Inventory) TableName() string { return "inventory" }
