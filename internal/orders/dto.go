package orders

import (
	"time"

	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
)

// AdminOrderFilters describe the inputs supported by the admin orders list.
type AdminOrderFilters struct {
	Status   *enums.OrderStatus
	UserID   *int64
	DateFrom *time.Time
	DateTo   *time.Time
}

// CreateOrderInput is the checkout payload after controller validation.
type CreateOrderInput struct {
	UserID  int64
	Items   []CreateOrderItemInput
	Address AddressInput
}

// CreateOrderItemInput is one requested product line.
type CreateOrderItemInput struct {
	ProductID int64
	Quantity  int
}

// AddressInput is the shipping destination supplied at checkout.
type AddressInput struct {
	FullName      string
	StreetAddress string
	City          string
	Commune       *string
	State         *string
	PostalCode    string
	Country       string
	Phone         *string
}

// OrderItemDTO is the transport shape of one order line.
type OrderItemDTO struct {
	ID             int64  `json:"id"`
	ProductID      *int64 `json:"product_id,omitempty"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int    `json:"unit_price_cents"`
}

// AddressDTO is the transport shape of the shipping destination.
type AddressDTO struct {
	FullName      string  `json:"full_name"`
	StreetAddress string  `json:"street_address"`
	City          string  `json:"city"`
	Commune       *string `json:"commune,omitempty"`
	State         *string `json:"state,omitempty"`
	PostalCode    string  `json:"postal_code"`
	Country       string  `json:"country"`
	Phone         *string `json:"phone,omitempty"`
}

// FulfillmentItemDTO is one allocated order line within a fulfillment.
type FulfillmentItemDTO struct {
	ID          int64  `json:"id"`
	OrderItemID int64  `json:"order_item_id"`
	ProductName string `json:"order_item_product_name,omitempty"`
	Quantity    int    `json:"quantity"`
}

// FulfillmentDTO is the transport shape of one nursery's slice of an order.
type FulfillmentDTO struct {
	ID            int64                   `json:"id"`
	NurseryID     *int64                  `json:"nursery_id,omitempty"`
	NurseryName   *string                 `json:"nursery_name,omitempty"`
	Status        enums.FulfillmentStatus `json:"status"`
	DeliveryName  *string                 `json:"delivery_name,omitempty"`
	DeliveryPhone *string                 `json:"delivery_phone,omitempty"`
	DeliveryNotes *string                 `json:"delivery_notes,omitempty"`
	Items         []FulfillmentItemDTO    `json:"items"`
}

// OrderDTO is the full transport shape of an order.
type OrderDTO struct {
	ID            int64             `json:"id"`
	UserID        *int64            `json:"user_id,omitempty"`
	Status        enums.OrderStatus `json:"status"`
	SubtotalCents int               `json:"subtotal_cents"`
	ShippingCents int               `json:"shipping_cents"`
	TaxCents      int               `json:"tax_cents"`
	TotalCents    int               `json:"total_cents"`
	Currency      string            `json:"currency"`
	Items         []OrderItemDTO    `json:"items"`
	Address       *AddressDTO       `json:"address,omitempty"`
	Fulfillments  []FulfillmentDTO  `json:"fulfillments"`
	CreatedAt     time.Time         `json:"created_at"`
}

// OrderSummary is the condensed row returned in lists.
type OrderSummary struct {
	ID         int64             `json:"id"`
	Status     enums.OrderStatus `json:"status"`
	TotalCents int               `json:"total_cents"`
	Currency   string            `json:"currency"`
	TotalItems int               `json:"total_items"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OrderList wraps a paginated page of order summaries.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// SummaryFromModel condenses a persisted order into its list row.
func SummaryFromModel(o *models.Order) OrderSummary {
	totalItems := 0
	for _, item := range o.Items {
		totalItems += item.Quantity
	}
	return OrderSummary{
		ID:         o.ID,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		Currency:   o.Currency,
		TotalItems: totalItems,
		CreatedAt:  o.CreatedAt,
	}
}

// FromModel converts the persisted order including loaded associations.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	dto := &OrderDTO{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		SubtotalCents: o.SubtotalCents,
		ShippingCents: o.ShippingCents,
		TaxCents:      o.TaxCents,
		TotalCents:    o.TotalCents,
		Currency:      o.Currency,
		Items:         make([]OrderItemDTO, 0, len(o.Items)),
		Fulfillments:  make([]FulfillmentDTO, 0, len(o.Fulfillments)),
		CreatedAt:     o.CreatedAt,
	}

	for i := range o.Items {
		item := &o.Items[i]
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	if o.ShippingAddress != nil {
		dto.Address = &AddressDTO{
			FullName:      o.ShippingAddress.FullName,
			StreetAddress: o.ShippingAddress.StreetAddress,
			City:          o.ShippingAddress.City,
			Commune:       o.ShippingAddress.Commune,
			State:         o.ShippingAddress.State,
			PostalCode:    o.ShippingAddress.PostalCode,
			Country:       o.ShippingAddress.Country,
			Phone:         o.ShippingAddress.Phone,
		}
	}

	itemNames := make(map[int64]string, len(o.Items))
	for i := range o.Items {
		itemNames[o.Items[i].ID] = o.Items[i].ProductName
	}
	for i := range o.Fulfillments {
		f := FulfillmentFromModel(&o.Fulfillments[i])
		for j := range f.Items {
			f.Items[j].ProductName = itemNames[f.Items[j].OrderItemID]
		}
		dto.Fulfillments = append(dto.Fulfillments, f)
	}
	return dto
}

// FulfillmentFromModel converts one persisted fulfillment.
func FulfillmentFromModel(f *models.OrderFulfillment) FulfillmentDTO {
	dto := FulfillmentDTO{
		ID:            f.ID,
		NurseryID:     f.NurseryID,
		Status:        f.Status,
		DeliveryName:  f.DeliveryName,
		DeliveryPhone: f.DeliveryPhone,
		DeliveryNotes: f.DeliveryNotes,
		Items:         make([]FulfillmentItemDTO, 0, len(f.Items)),
	}
	if f.Nursery != nil {
		name := f.Nursery.InternalName
		dto.NurseryName = &name
	}
	for i := range f.Items {
		item := &f.Items[i]
		dto.Items = append(dto.Items, FulfillmentItemDTO{
			ID:          item.ID,
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
		})
	}
	return dto
}
