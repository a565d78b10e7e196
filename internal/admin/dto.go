package admin

import (
	"github.com/bloomhaus/bloomhaus-backend/internal/orders"
	"github.com/bloomhaus/bloomhaus-backend/internal/users"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
)

// Metrics is the operational snapshot returned to super admins.
type Metrics struct {
	UsersByRole  map[enums.UserRole]int64 `json:"users_by_role"`
	OrderCount   int64                    `json:"order_count"`
	RevenueCents int64                    `json:"revenue_cents"`
	ProductCount int64                    `json:"product_count"`
	NurseryCount int64                    `json:"nursery_count"`
	RecentOrders []orders.OrderSummary    `json:"recent_orders"`
}

// UserList wraps a paginated page of user profiles.
type UserList struct {
	Users      []users.UserDTO `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// CreateUserInput holds the fields a super admin supplies for a new account.
type CreateUserInput struct {
	Email    string
	Name     *string
	Role     enums.UserRole
	Password string
}
