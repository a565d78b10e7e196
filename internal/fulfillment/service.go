package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bloomhaus/bloomhaus-backend/internal/nurseries"
	"github.com/bloomhaus/bloomhaus-backend/internal/orders"
	"github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the admin allocation workflow for one order at a time.
type Service interface {
	Suggestions(ctx context.Context, orderID int64) ([]NurserySuggestion, error)
	Allocate(ctx context.Context, input AllocateInput) ([]orders.FulfillmentDTO, error)
	Confirm(ctx context.Context, orderID int64) (*orders.OrderDTO, error)
	SetDeliveryContact(ctx context.Context, input DeliveryContactInput) (*orders.FulfillmentDTO, error)
}

type service struct {
	repo      Repository
	orders    orders.Repository
	nurseries nurseries.Repository
	products  products.Repository
	tx        txRunner
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo          Repository
	OrdersRepo    orders.Repository
	NurseriesRepo nurseries.Repository
	ProductsRepo  products.Repository
	Tx            txRunner
}

// NewService builds the fulfillment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.NurseriesRepo == nil {
		return nil, fmt.Errorf("nurseries repository required")
	}
	if params.ProductsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      params.Repo,
		orders:    params.OrdersRepo,
		nurseries: params.NurseriesRepo,
		products:  params.ProductsRepo,
		tx:        params.Tx,
	}, nil
}

// Suggestions ranks the nurseries able to cover any part of the order.
func (s *service) Suggestions(ctx context.Context, orderID int64) ([]NurserySuggestion, error) {
	order, err := s.findOrder(ctx, s.orders, orderID)
	if err != nil {
		return nil, err
	}
	if order.ShippingAddress == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no shipping address")
	}

	type requested struct {
		orderItemID int64
		productName string
		quantity    int
	}
	requestedByProduct := map[int64]requested{}
	productIDs := make([]int64, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		if item.ProductID == nil {
			continue
		}
		requestedByProduct[*item.ProductID] = requested{
			orderItemID: item.ID,
			productName: item.ProductName,
			quantity:    item.Quantity,
		}
		productIDs = append(productIDs, *item.ProductID)
	}
	if len(productIDs) == 0 {
		return []NurserySuggestion{}, nil
	}

	rows, err := s.repo.FindCandidateStock(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load candidate stock")
	}

	byNursery := map[int64]*NurserySuggestion{}
	nurseryOrder := []int64{}
	for _, row := range rows {
		req, ok := requestedByProduct[row.ProductID]
		if !ok || row.Quantity <= 0 {
			continue
		}
		suggestion, ok := byNursery[row.NurseryID]
		if !ok {
			suggestion = &NurserySuggestion{
				NurseryID:    row.NurseryID,
				InternalName: row.InternalName,
				City:         row.City,
				Commune:      row.Commune,
				MatchTier:    matchTier(order.ShippingAddress, row.City, row.Commune),
			}
			byNursery[row.NurseryID] = suggestion
			nurseryOrder = append(nurseryOrder, row.NurseryID)
		}
		available := row.Quantity
		if req.quantity < available {
			available = req.quantity
		}
		suggestion.AvailableItems = append(suggestion.AvailableItems, SuggestedItem{
			OrderItemID:  req.orderItemID,
			ProductID:    row.ProductID,
			ProductName:  req.productName,
			RequestedQty: req.quantity,
			AvailableQty: available,
		})
	}

	out := make([]NurserySuggestion, 0, len(nurseryOrder))
	for _, id := range nurseryOrder {
		suggestion := byNursery[id]
		if len(suggestion.AvailableItems) == 0 {
			continue
		}
		out = append(out, *suggestion)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchTier != out[j].MatchTier {
			return out[i].MatchTier < out[j].MatchTier
		}
		return len(out[i].AvailableItems) > len(out[j].AvailableItems)
	})
	return out, nil
}

// Allocate replaces the order's proposed fulfillments with the submitted set.
func (s *service) Allocate(ctx context.Context, input AllocateInput) ([]orders.FulfillmentDTO, error) {
	if len(input.Allocations) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one allocation required")
	}

	var created []models.OrderFulfillment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		order, err := s.findOrder(ctx, ordersRepo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusConfirmed || order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be allocated")
		}

		orderedQty := map[int64]int{}
		for i := range order.Items {
			orderedQty[order.Items[i].ID] = order.Items[i].Quantity
		}

		nurserySeen := map[int64]struct{}{}
		allocatedQty := map[int64]int{}
		fulfillments := make([]models.OrderFulfillment, 0, len(input.Allocations))
		for _, entry := range input.Allocations {
			if _, dup := nurserySeen[entry.NurseryID]; dup {
				return pkgerrors.New(pkgerrors.CodeValidation, "duplicate nursery in allocation").WithDetails(map[string]any{"nursery_id": entry.NurseryID})
			}
			nurserySeen[entry.NurseryID] = struct{}{}

			if _, err := s.nurseries.WithTx(tx).FindByID(ctx, entry.NurseryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "nursery not found").WithDetails(map[string]any{"nursery_id": entry.NurseryID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nursery")
			}

			nurseryID := entry.NurseryID
			fulfillment := models.OrderFulfillment{
				OrderID:   order.ID,
				NurseryID: &nurseryID,
				Status:    enums.FulfillmentStatusProposed,
				Items:     make([]models.OrderFulfillmentItem, 0, len(entry.Items)),
			}
			for _, item := range entry.Items {
				ordered, ok := orderedQty[item.OrderItemID]
				if !ok {
					return pkgerrors.New(pkgerrors.CodeValidation, "order item does not belong to order").WithDetails(map[string]any{"order_item_id": item.OrderItemID})
				}
				if item.Quantity <= 0 {
					return pkgerrors.New(pkgerrors.CodeValidation, "allocation quantity must be positive").WithDetails(map[string]any{"order_item_id": item.OrderItemID})
				}
				allocatedQty[item.OrderItemID] += item.Quantity
				if allocatedQty[item.OrderItemID] > ordered {
					return pkgerrors.New(pkgerrors.CodeValidation, "allocation exceeds ordered quantity").WithDetails(map[string]any{
						"order_item_id": item.OrderItemID,
						"ordered":       ordered,
					})
				}
				fulfillment.Items = append(fulfillment.Items, models.OrderFulfillmentItem{
					OrderItemID: item.OrderItemID,
					Quantity:    item.Quantity,
				})
			}
			fulfillments = append(fulfillments, fulfillment)
		}

		repo := s.repo.WithTx(tx)
		if err := repo.DeleteProposedByOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear proposed fulfillments")
		}
		if err := repo.CreateBatch(ctx, fulfillments); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create fulfillments")
		}
		created = fulfillments
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]orders.FulfillmentDTO, 0, len(created))
	for i := range created {
		out = append(out, orders.FulfillmentFromModel(&created[i]))
	}
	return out, nil
}

// Confirm commits the proposed fulfillments: stock is decremented and the
// order moves to confirmed.
func (s *service) Confirm(ctx context.Context, orderID int64) (*orders.OrderDTO, error) {
	var confirmed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		order, err := s.findOrder(ctx, ordersRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusConfirmed || order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be confirmed")
		}

		proposed := make([]*models.OrderFulfillment, 0, len(order.Fulfillments))
		for i := range order.Fulfillments {
			if order.Fulfillments[i].Status == enums.FulfillmentStatusProposed {
				proposed = append(proposed, &order.Fulfillments[i])
			}
		}
		if len(proposed) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order has no proposed fulfillments")
		}

		productByOrderItem := map[int64]*int64{}
		for i := range order.Items {
			productByOrderItem[order.Items[i].ID] = order.Items[i].ProductID
		}

		nurseriesRepo := s.nurseries.WithTx(tx)
		touchedProducts := map[int64]struct{}{}
		for _, fulfillment := range proposed {
			if fulfillment.NurseryID == nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "fulfillment has no nursery")
			}
			for _, item := range fulfillment.Items {
				productID := productByOrderItem[item.OrderItemID]
				if productID == nil {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "order item product no longer exists")
				}
				line, err := nurseriesRepo.FindStockLine(ctx, *fulfillment.NurseryID, *productID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return insufficientStock(*fulfillment.NurseryID, *productID)
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nursery stock")
				}
				if line.Quantity < item.Quantity {
					return insufficientStock(*fulfillment.NurseryID, *productID)
				}
				if err := nurseriesRepo.DecrementStock(ctx, *fulfillment.NurseryID, *productID, item.Quantity); err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return insufficientStock(*fulfillment.NurseryID, *productID)
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement nursery stock")
				}
				touchedProducts[*productID] = struct{}{}
			}
		}

		productsRepo := s.products.WithTx(tx)
		for productID := range touchedProducts {
			if err := productsRepo.RecomputeGlobalInventory(ctx, productID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute inventory")
			}
		}

		repo := s.repo.WithTx(tx)
		if err := repo.UpdateStatusByOrder(ctx, order.ID, enums.FulfillmentStatusProposed, enums.FulfillmentStatusConfirmed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm fulfillments")
		}
		if err := ordersRepo.UpdateStatus(ctx, order.ID, string(enums.OrderStatusConfirmed)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
		}

		refreshed, err := ordersRepo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		confirmed = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders.FromModel(confirmed), nil
}

// SetDeliveryContact records the recipient on a confirmed fulfillment.
func (s *service) SetDeliveryContact(ctx context.Context, input DeliveryContactInput) (*orders.FulfillmentDTO, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery name required")
	}
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery phone required")
	}
	var notes *string
	if input.Notes != nil {
		trimmed := strings.TrimSpace(*input.Notes)
		if trimmed != "" {
			notes = &trimmed
		}
	}

	var out *orders.FulfillmentDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fulfillment, err := repo.FindByID(ctx, input.FulfillmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "fulfillment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fulfillment")
		}
		if input.OrderID > 0 && fulfillment.OrderID != input.OrderID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "fulfillment not found")
		}
		if fulfillment.Status != enums.FulfillmentStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery contact requires a confirmed fulfillment")
		}
		if fulfillment.DeliveryName != nil || fulfillment.DeliveryPhone != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "delivery contact already recorded")
		}

		if err := repo.UpdateDeliveryContact(ctx, fulfillment.ID, name, phone, notes); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery contact")
		}

		fulfillment.DeliveryName = &name
		fulfillment.DeliveryPhone = &phone
		fulfillment.DeliveryNotes = notes
		dto := orders.FulfillmentFromModel(fulfillment)
		out = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) findOrder(ctx context.Context, repo orders.Repository, orderID int64) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func matchTier(address *models.Address, city string, commune *string) enums.MatchTier {
	if address.Commune != nil && commune != nil &&
		strings.EqualFold(strings.TrimSpace(*address.Commune), strings.TrimSpace(*commune)) {
		return enums.MatchTierSameCommune
	}
	if strings.EqualFold(strings.TrimSpace(address.City), strings.TrimSpace(city)) {
		return enums.MatchTierSameCity
	}
	return enums.MatchTierOther
}

func insufficientStock(nurseryID, productID int64) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient nursery stock").WithDetails(map[string]any{
		"nursery_id": nurseryID,
		"product_id": productID,
	})
}
