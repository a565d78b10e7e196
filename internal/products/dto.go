package products

import (
	"time"

	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
)

// ListFilters describe the inputs supported by the catalog list.
type ListFilters struct {
	Kind            *enums.ProductKind
	Environment     *enums.PlantEnvironment
	Query           string
	IncludeInactive bool
}

// AttributesDTO is the transport shape of the optional plant attributes.
type AttributesDTO struct {
	PlantEnvironment *enums.PlantEnvironment `json:"plant_environment,omitempty"`
	Size             *string                 `json:"size,omitempty"`
	Color            *string                 `json:"color,omitempty"`
	CareInstructions *string                 `json:"care_instructions,omitempty"`
}

// ProductDTO is the catalog transport shape including global availability.
type ProductDTO struct {
	ID          int64             `json:"id"`
	Slug        string            `json:"slug"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	PriceCents  int               `json:"price_cents"`
	Currency    string            `json:"currency"`
	Kind        enums.ProductKind `json:"kind"`
	Active      bool              `json:"active"`
	Quantity    int               `json:"quantity"`
	Attributes  *AttributesDTO    `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ProductList wraps the paginated catalog page.
type ProductList struct {
	Products   []ProductDTO `json:"products"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// CreateProductInput holds the fields accepted when staff add a product.
type CreateProductInput struct {
	Slug        string
	Name        string
	Description *string
	PriceCents  int
	Currency    string
	Kind        enums.ProductKind
	Active      *bool
	Attributes  *AttributesDTO
}

// UpdateProductInput holds the patchable product fields.
type UpdateProductInput struct {
	Name        *string
	Description *string
	PriceCents  *int
	Active      *bool
	Attributes  *AttributesDTO
}

// FromModel converts the persisted product plus its global quantity.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	dto := &ProductDTO{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		Kind:        p.Kind,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
	if p.Inventory != nil {
		dto.Quantity = p.Inventory.Quantity
	}
	if p.Attributes != nil {
		dto.Attributes = &AttributesDTO{
			PlantEnvironment: p.Attributes.PlantEnvironment,
			Size:             p.Attributes.Size,
			Color:            p.Attributes.Color,
			CareInstructions: p.Attributes.CareInstructions,
		}
	}
	return dto
}
