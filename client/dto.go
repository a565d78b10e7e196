package client

import "time"

// SuggestedItem is one order line a nursery can cover, capped at the
// requested quantity.
type SuggestedItem struct {
	OrderItemID  int64  `json:"order_item_id"`
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	RequestedQty int    `json:"requested_qty"`
	AvailableQty int    `json:"available_qty"`
}

// NurserySuggestion is one candidate nursery in server-ranked order.
type NurserySuggestion struct {
	NurseryID      int64           `json:"nursery_id"`
	InternalName   string          `json:"internal_name"`
	City           string          `json:"city"`
	Commune        *string         `json:"commune,omitempty"`
	MatchTier      int             `json:"match_tier"`
	AvailableItems []SuggestedItem `json:"available_items"`
}

// AllocationItem assigns a quantity of one order line to a nursery.
type AllocationItem struct {
	OrderItemID int64 `json:"order_item_id"`
	Quantity    int   `json:"quantity"`
}

// AllocationEntry is one nursery's slice of the submission.
type AllocationEntry struct {
	NurseryID int64            `json:"nursery_id"`
	Items     []AllocationItem `json:"items"`
}

// Submission is the wire payload for the allocate endpoint.
type Submission struct {
	Allocations []AllocationEntry `json:"allocations"`
}

// FulfillmentItem is one allocated order line inside a fulfillment.
type FulfillmentItem struct {
	ID          int64  `json:"id"`
	OrderItemID int64  `json:"order_item_id"`
	ProductName string `json:"order_item_product_name,omitempty"`
	Quantity    int    `json:"quantity"`
}

// Fulfillment is one nursery's slice of an order.
type Fulfillment struct {
	ID            int64             `json:"id"`
	NurseryID     *int64            `json:"nursery_id,omitempty"`
	NurseryName   *string           `json:"nursery_name,omitempty"`
	Status        string            `json:"status"`
	DeliveryName  *string           `json:"delivery_name,omitempty"`
	DeliveryPhone *string           `json:"delivery_phone,omitempty"`
	DeliveryNotes *string           `json:"delivery_notes,omitempty"`
	Items         []FulfillmentItem `json:"items"`
}

// OrderItem is one product line on an order.
type OrderItem struct {
	ID             int64  `json:"id"`
	ProductID      *int64 `json:"product_id,omitempty"`
	ProductName    string `json:"product_name"`
	UnitPriceCents int    `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// Address is the order's shipping destination.
type Address struct {
	FullName      string  `json:"full_name"`
	StreetAddress string  `json:"street_address"`
	City          string  `json:"city"`
	Commune       *string `json:"commune,omitempty"`
	State         *string `json:"state,omitempty"`
	PostalCode    string  `json:"postal_code"`
	Country       string  `json:"country"`
	Phone         *string `json:"phone,omitempty"`
}

// Order is the admin view of one order.
type Order struct {
	ID            int64         `json:"id"`
	UserID        *int64        `json:"user_id,omitempty"`
	Status        string        `json:"status"`
	SubtotalCents int           `json:"subtotal_cents"`
	ShippingCents int           `json:"shipping_cents"`
	TaxCents      int           `json:"tax_cents"`
	TotalCents    int           `json:"total_cents"`
	Currency      string        `json:"currency"`
	Items         []OrderItem   `json:"items"`
	Address       *Address      `json:"address,omitempty"`
	Fulfillments  []Fulfillment `json:"fulfillments"`
	CreatedAt     time.Time     `json:"created_at"`
}

// FulfillmentStatusProposed is the status of a not-yet-committed fulfillment.
const FulfillmentStatusProposed = "proposed"

// HasProposed reports whether the order carries any proposed fulfillment.
// UIs use it to hide the confirm control when there is nothing to commit.
func HasProposed(order *Order) bool {
	if order == nil {
		return false
	}
	for _, f := range order.Fulfillments {
		if f.Status == FulfillmentStatusProposed {
			return true
		}
	}
	return false
}
