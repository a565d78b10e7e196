package nurseries

import (
	"time"

	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
)

// NurseryDTO is the admin transport shape for a fulfillment site.
type NurseryDTO struct {
	ID           int64     `json:"id"`
	InternalName string    `json:"internal_name"`
	City         string    `json:"city"`
	Commune      *string   `json:"commune,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NurseryList wraps the paginated nurseries page.
type NurseryList struct {
	Nurseries  []NurseryDTO `json:"nurseries"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// StockLine is one product's stock at a nursery.
type StockLine struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// NurseryDetail is the nursery plus its current stock lines.
type NurseryDetail struct {
	NurseryDTO
	Inventory []StockLine `json:"inventory"`
}

// CreateNurseryInput holds the fields accepted when staff add a nursery.
type CreateNurseryInput struct {
	InternalName string
	City         string
	Commune      *string
	Latitude     *float64
	Longitude    *float64
}

// UpdateNurseryInput holds the patchable nursery fields.
type UpdateNurseryInput struct {
	InternalName *string
	City         *string
	Commune      *string
	Latitude     *float64
	Longitude    *float64
}

// UpsertStockInput sets the absolute quantity of one product at one nursery.
type UpsertStockInput struct {
	NurseryID int64
	ProductID int64
	Quantity  int
}

// FromModel converts the persisted nursery.
func FromModel(n *models.Nursery) *NurseryDTO {
	if n == nil {
		return nil
	}
	return &NurseryDTO{
		ID:           n.ID,
		InternalName: n.InternalName,
		City:         n.City,
		Commune:      n.Commune,
		Latitude:     n.Latitude,
		Longitude:    n.Longitude,
		CreatedAt:    n.CreatedAt,
	}
}
