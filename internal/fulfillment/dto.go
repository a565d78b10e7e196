package fulfillment

import "github.com/bloomhaus/bloomhaus-backend/pkg/enums"

// SuggestedItem is one order line a nursery can cover, capped at the
// requested quantity.
type SuggestedItem struct {
	OrderItemID  int64  `json:"order_item_id"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	RequestedQty int    `json:"requested_qty"`
	AvailableQty int    `json:"available_qty"`
}

// NurserySuggestion is one candidate nursery ranked by shipping proximity.
type NurserySuggestion struct {
	NurseryID      int64           `json:"nursery_id"`
	InternalName   string          `json:"internal_name"`
	City           string          `json:"city"`
	Commune        *string         `json:"commune,omitempty"`
	MatchTier      enums.MatchTier `json:"match_tier"`
	AvailableItems []SuggestedItem `json:"available_items"`
}

// AllocationItem assigns a quantity of one order line to a nursery.
type AllocationItem struct {
	OrderItemID int64 `json:"order_item_id" validate:"required,gt=0"`
	Quantity    int   `json:"quantity" validate:"required,gt=0"`
}

// AllocationEntry is one nursery's requested slice of the order.
type AllocationEntry struct {
	NurseryID int64            `json:"nursery_id" validate:"required,gt=0"`
	Items     []AllocationItem `json:"items" validate:"required,min=1,dive"`
}

// AllocateInput is the full allocation submitted by staff.
type AllocateInput struct {
	OrderID     int64
	Allocations []AllocationEntry
}

// DeliveryContactInput records who receives the delivery for one fulfillment.
type DeliveryContactInput struct {
	OrderID       int64
	FulfillmentID int64
	Name          string
	Phone         string
	Notes         *string
}
