package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/pkg/config"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
	"gorm.io/gorm"
)

const basisPointsDivisor = 10000

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	GetMine(ctx context.Context, userID, orderID int64) (*OrderDTO, error)
	ListMine(ctx context.Context, userID int64, params pagination.Params) (*OrderList, error)
	AdminGet(ctx context.Context, orderID int64) (*OrderDTO, error)
	AdminList(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (*OrderList, error)
	AdminUpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
	checkout config.CheckoutConfig
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, productsRepo products.Repository, tx txRunner, checkout config.CheckoutConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: productsRepo,
		tx:       tx,
		checkout: checkout,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productsRepo := s.products.WithTx(tx)

		subtotal := 0
		currency := ""
		lines := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			product, err := productsRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "product not found").WithDetails(map[string]any{"product_id": item.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if !product.Active {
				return pkgerrors.New(pkgerrors.CodeValidation, "product not available").WithDetails(map[string]any{"product_id": item.ProductID})
			}
			if currency == "" {
				currency = product.Currency
			}

			subtotal += product.PriceCents * item.Quantity
			productID := product.ID
			lines = append(lines, models.OrderItem{
				ProductID:      &productID,
				Quantity:       item.Quantity,
				UnitPriceCents: product.PriceCents,
				ProductName:    product.Name,
			})
		}
		if currency == "" {
			currency = "USD"
		}

		shipping := s.checkout.ShippingFlatCents
		tax := subtotal * s.checkout.TaxRateBps / basisPointsDivisor
		userID := input.UserID

		order = &models.Order{
			UserID:        &userID,
			Status:        enums.OrderStatusPlaced,
			SubtotalCents: subtotal,
			ShippingCents: shipping,
			TaxCents:      tax,
			TotalCents:    subtotal + shipping + tax,
			Currency:      currency,
			Items:         lines,
			ShippingAddress: &models.Address{
				FullName:      input.Address.FullName,
				StreetAddress: input.Address.StreetAddress,
				City:          input.Address.City,
				Commune:       input.Address.Commune,
				State:         input.Address.State,
				PostalCode:    input.Address.PostalCode,
				Country:       input.Address.Country,
				Phone:         input.Address.Phone,
			},
		}

		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID int64) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID int64, params pagination.Params) (*OrderList, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	normalized := params.Normalize()
	rows, total, err := s.repo.ListByUser(ctx, userID, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildOrderList(rows, total, normalized), nil
}

func (s *service) AdminGet(ctx context.Context, orderID int64) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) AdminList(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (*OrderList, error) {
	normalized := params.Normalize()
	rows, total, err := s.repo.ListAdmin(ctx, normalized, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildOrderList(rows, total, normalized), nil
}

func (s *service) AdminUpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled && status != enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot change status")
	}

	if err := s.repo.UpdateStatus(ctx, orderID, string(status)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status
	return FromModel(order), nil
}

func (s *service) findOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func buildOrderList(rows []models.Order, total int64, params pagination.Params) *OrderList {
	out := make([]OrderSummary, 0, len(rows))
	for i := range rows {
		out = append(out, SummaryFromModel(&rows[i]))
	}
	return &OrderList{
		Orders:     out,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: pagination.TotalPages(total, params.PageSize),
	}
}
