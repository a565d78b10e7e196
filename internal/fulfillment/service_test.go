package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/bloomhaus/bloomhaus-backend/internal/nurseries"
	"github.com/bloomhaus/bloomhaus-backend/internal/orders"
	"github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
	"gorm.io/gorm"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrdersRepo struct {
	order         *models.Order
	updatedStatus string
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrdersRepo) ListAdmin(ctx context.Context, params pagination.Params, filters orders.AdminOrderFilters) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	s.updatedStatus = status
	if s.order != nil && s.order.ID == id {
		s.order.Status = enums.OrderStatus(status)
	}
	return nil
}

func (s *stubOrdersRepo) SalesTotals(ctx context.Context) (int64, int64, error) { return 0, 0, nil }

func (s *stubOrdersRepo) FindRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return nil, nil
}

type stubNurseriesRepo struct {
	nurseries  map[int64]*models.Nursery
	stock      map[[2]int64]int
	decrements map[[2]int64]int
}

func (s *stubNurseriesRepo) WithTx(tx *gorm.DB) nurseries.Repository { return s }

func (s *stubNurseriesRepo) Create(ctx context.Context, n *models.Nursery) (*models.Nursery, error) {
	return n, nil
}

func (s *stubNurseriesRepo) FindByID(ctx context.Context, id int64) (*models.Nursery, error) {
	n, ok := s.nurseries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (s *stubNurseriesRepo) List(ctx context.Context, params pagination.Params) ([]models.Nursery, int64, error) {
	return nil, 0, nil
}

func (s *stubNurseriesRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	return nil
}

func (s *stubNurseriesRepo) Delete(ctx context.Context, id int64) error { return nil }

func (s *stubNurseriesRepo) FindStock(ctx context.Context, nurseryID int64) ([]nurseries.StockLine, error) {
	return nil, nil
}

func (s *stubNurseriesRepo) FindStockLine(ctx context.Context, nurseryID, productID int64) (*models.NurseryInventory, error) {
	qty, ok := s.stock[[2]int64{nurseryID, productID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.NurseryInventory{NurseryID: nurseryID, ProductID: productID, Quantity: qty}, nil
}

func (s *stubNurseriesRepo) UpsertStock(ctx context.Context, nurseryID, productID int64, quantity int) error {
	return nil
}

func (s *stubNurseriesRepo) DecrementStock(ctx context.Context, nurseryID, productID int64, quantity int) error {
	key := [2]int64{nurseryID, productID}
	if s.stock[key] < quantity {
		return gorm.ErrRecordNotFound
	}
	s.stock[key] -= quantity
	if s.decrements == nil {
		s.decrements = map[[2]int64]int{}
	}
	s.decrements[key] += quantity
	return nil
}

func (s *stubNurseriesRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type stubProductsRepo struct {
	recomputed map[int64]int
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductsRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	return p, nil
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductsRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductsRepo) List(ctx context.Context, params pagination.Params, filters products.ListFilters) ([]models.Product, int64, error) {
	return nil, 0, nil
}

func (s *stubProductsRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	return nil
}

func (s *stubProductsRepo) UpsertAttributes(ctx context.Context, attrs *models.ProductAttributes) error {
	return nil
}

func (s *stubProductsRepo) RecomputeGlobalInventory(ctx context.Context, productID int64) error {
	if s.recomputed == nil {
		s.recomputed = map[int64]int{}
	}
	s.recomputed[productID]++
	return nil
}

func (s *stubProductsRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type stubFulfillmentRepo struct {
	candidates   []CandidateStockRow
	fulfillment  *models.OrderFulfillment
	deletedOrder int64
	created      []models.OrderFulfillment
	statusFrom   enums.FulfillmentStatus
	statusTo     enums.FulfillmentStatus
	contactName  string
	contactPhone string
	contactNotes *string
}

func (s *stubFulfillmentRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubFulfillmentRepo) FindCandidateStock(ctx context.Context, productIDs []int64) ([]CandidateStockRow, error) {
	return s.candidates, nil
}

func (s *stubFulfillmentRepo) FindByOrder(ctx context.Context, orderID int64) ([]models.OrderFulfillment, error) {
	return nil, nil
}

func (s *stubFulfillmentRepo) FindByID(ctx context.Context, id int64) (*models.OrderFulfillment, error) {
	if s.fulfillment == nil || s.fulfillment.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.fulfillment, nil
}

func (s *stubFulfillmentRepo) DeleteProposedByOrder(ctx context.Context, orderID int64) error {
	s.deletedOrder = orderID
	return nil
}

func (s *stubFulfillmentRepo) CreateBatch(ctx context.Context, fulfillments []models.OrderFulfillment) error {
	s.created = fulfillments
	return nil
}

func (s *stubFulfillmentRepo) UpdateStatusByOrder(ctx context.Context, orderID int64, from, to enums.FulfillmentStatus) error {
	s.statusFrom = from
	s.statusTo = to
	return nil
}

func (s *stubFulfillmentRepo) UpdateDeliveryContact(ctx context.Context, id int64, name, phone string, notes *string) error {
	s.contactName = name
	s.contactPhone = phone
	s.contactNotes = notes
	return nil
}

func newTestService(t *testing.T, repo *stubFulfillmentRepo, ordersRepo *stubOrdersRepo, nurseriesRepo *stubNurseriesRepo, productsRepo *stubProductsRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:          repo,
		OrdersRepo:    ordersRepo,
		NurseriesRepo: nurseriesRepo,
		ProductsRepo:  productsRepo,
		Tx:            stubTx{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func placedOrder() *models.Order {
	return &models.Order{
		ID:     42,
		Status: enums.OrderStatusPlaced,
		Items: []models.OrderItem{
			{ID: 1, OrderID: 42, ProductID: int64Ptr(11), Quantity: 3, ProductName: "Boston Fern"},
			{ID: 2, OrderID: 42, ProductID: int64Ptr(12), Quantity: 2, ProductName: "Monstera"},
		},
		ShippingAddress: &models.Address{
			OrderID: 42,
			City:    "Portland",
			Commune: strPtr("Pearl District"),
		},
	}
}

func TestSuggestionsSortsByTierThenCoverage(t *testing.T) {
	repo := &stubFulfillmentRepo{candidates: []CandidateStockRow{
		// other city, covers both items
		{NurseryID: 3, InternalName: "Far Grove", City: "Salem", ProductID: 11, Quantity: 10},
		{NurseryID: 3, InternalName: "Far Grove", City: "Salem", ProductID: 12, Quantity: 10},
		// same commune
		{NurseryID: 1, InternalName: "Pearl Plants", City: "Portland", Commune: strPtr("pearl district"), ProductID: 11, Quantity: 5},
		// same city, covers both items
		{NurseryID: 2, InternalName: "Rose Yard", City: "portland", ProductID: 11, Quantity: 1},
		{NurseryID: 2, InternalName: "Rose Yard", City: "portland", ProductID: 12, Quantity: 4},
	}}
	ordersRepo := &stubOrdersRepo{order: placedOrder()}
	svc := newTestService(t, repo, ordersRepo, &stubNurseriesRepo{}, &stubProductsRepo{})

	suggestions, err := svc.Suggestions(context.Background(), 42)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions got %d", len(suggestions))
	}
	if suggestions[0].NurseryID != 1 || suggestions[0].MatchTier != enums.MatchTierSameCommune {
		t.Fatalf("expected commune match first, got %+v", suggestions[0])
	}
	if suggestions[1].NurseryID != 2 || suggestions[1].MatchTier != enums.MatchTierSameCity {
		t.Fatalf("expected city match second, got %+v", suggestions[1])
	}
	if suggestions[2].NurseryID != 3 || suggestions[2].MatchTier != enums.MatchTierOther {
		t.Fatalf("expected other match last, got %+v", suggestions[2])
	}
}

func TestSuggestionsClampsAvailableToRequested(t *testing.T) {
	repo := &stubFulfillmentRepo{candidates: []CandidateStockRow{
		{NurseryID: 1, InternalName: "Pearl Plants", City: "Portland", ProductID: 11, Quantity: 50},
	}}
	ordersRepo := &stubOrdersRepo{order: placedOrder()}
	svc := newTestService(t, repo, ordersRepo, &stubNurseriesRepo{}, &stubProductsRepo{})

	suggestions, err := svc.Suggestions(context.Background(), 42)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	item := suggestions[0].AvailableItems[0]
	if item.AvailableQty != 3 || item.RequestedQty != 3 {
		t.Fatalf("expected clamp to requested=3, got %+v", item)
	}
}

func TestSuggestionsRequiresShippingAddress(t *testing.T) {
	order := placedOrder()
	order.ShippingAddress = nil
	ordersRepo := &stubOrdersRepo{order: order}
	svc := newTestService(t, &stubFulfillmentRepo{}, ordersRepo, &stubNurseriesRepo{}, &stubProductsRepo{})

	_, err := svc.Suggestions(context.Background(), 42)
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestSuggestionsEmptyWhenNoProductItems(t *testing.T) {
	order := placedOrder()
	for i := range order.Items {
		order.Items[i].ProductID = nil
	}
	ordersRepo := &stubOrdersRepo{order: order}
	svc := newTestService(t, &stubFulfillmentRepo{}, ordersRepo, &stubNurseriesRepo{}, &stubProductsRepo{})

	suggestions, err := svc.Suggestions(context.Background(), 42)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %d", len(suggestions))
	}
}

func TestAllocateReplacesProposedFulfillments(t *testing.T) {
	repo := &stubFulfillmentRepo{}
	ordersRepo := &stubOrdersRepo{order: placedOrder()}
	nurseriesRepo := &stubNurseriesRepo{nurseries: map[int64]*models.Nursery{
		7: {ID: 7, InternalName: "Fern & Co", City: "Portland"},
	}}
	svc := newTestService(t, repo, ordersRepo, nurseriesRepo, &stubProductsRepo{})

	created, err := svc.Allocate(context.Background(), AllocateInput{
		OrderID: 42,
		Allocations: []AllocationEntry{
			{NurseryID: 7, Items: []AllocationItem{{OrderItemID: 1, Quantity: 3}}},
		},
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if repo.deletedOrder != 42 {
		t.Fatalf("expected proposed fulfillments cleared for order 42, got %d", repo.deletedOrder)
	}
	if len(repo.created) != 1 || repo.created[0].Status != enums.FulfillmentStatusProposed {
		t.Fatalf("expected one proposed fulfillment, got %+v", repo.created)
	}
	if len(created) != 1 || created[0].Items[0].Quantity != 3 {
		t.Fatalf("unexpected created DTOs %+v", created)
	}
}

func TestAllocateRejectsOverAllocationAcrossNurseries(t *testing.T) {
	nurseriesRepo := &stubNurseriesRepo{nurseries: map[int64]*models.Nursery{
		7: {ID: 7}, 8: {ID: 8},
	}}
	ordersRepo := &stubOrdersRepo{order: placedOrder()}
	svc := newTestService(t, &stubFulfillmentRepo{}, ordersRepo, nurseriesRepo, &stubProductsRepo{})

	// item 1 ordered qty is 3; 2+2 across nurseries exceeds it
	_, err := svc.Allocate(context.Background(), AllocateInput{
		OrderID: 42,
		Allocations: []AllocationEntry{
			{NurseryID: 7, Items: []AllocationItem{{OrderItemID: 1, Quantity: 2}}},
			{NurseryID: 8, Items: []AllocationItem{{OrderItemID: 1, Quantity: 2}}},
		},
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestAllocateRejectsForeignOrderItem(t *testing.T) {
	nurseriesRepo := &stubNurseriesRepo{nurseries: map[int64]*models.Nursery{7: {ID: 7}}}
	ordersRepo := &stubOrdersRepo{order: placedOrder()}
	svc := newTestService(t, &stubFulfillmentRepo{}, ordersRepo, nurseriesRepo, &stubProductsRepo{})

	_, err := svc.Allocate(context.Background(), AllocateInput{
		OrderID: 42,
		Allocations: []AllocationEntry{
			{NurseryID: 7, Items: []AllocationItem{{OrderItemID: 99, Quantity: 1}}},
		},
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestAllocateRejectsUnknownNursery(t *testing.T) {
	ordersRepo := &stubOrdersRepo{order: placedOrder()}
	svc := newTestService(t, &stubFulfillmentRepo{}, ordersRepo, &stubNurseriesRepo{}, &stubProductsRepo{})

	_, err := svc.Allocate(context.Background(), AllocateInput{
		OrderID: 42,
		Allocations: []AllocationEntry{
			{NurseryID: 99, Items: []AllocationItem{{OrderItemID: 1, Quantity: 1}}},
		},
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestAllocateRejectsConfirmedOrder(t *testing.T) {
	order := placedOrder()
	order.Status = enums.OrderStatusConfirmed
	ordersRepo := &stubOrdersRepo{order: order}
	svc := newTestService(t, &stubFulfillmentRepo{}, ordersRepo, &stubNurseriesRepo{}, &stubProductsRepo{})

	_, err := svc.Allocate(context.Background(), AllocateInput{
		OrderID: 42,
		Allocations: []AllocationEntry{
			{NurseryID: 7, Items: []AllocationItem{{OrderItemID: 1, Quantity: 1}}},
		},
	})
	assertErrorCode(t, err, pkgerrors.CodeStateConflict)
}

func TestConfirmDecrementsStockAndRecomputes(t *testing.T) {
	order := placedOrder()
	order.Fulfillments = []models.OrderFulfillment{
		{
			ID:        100,
			OrderID:   42,
			NurseryID: int64Ptr(7),
			Status:    enums.FulfillmentStatusProposed,
			Items: []models.OrderFulfillmentItem{
				{FulfillmentID: 100, OrderItemID: 1, Quantity: 3},
				{FulfillmentID: 100, OrderItemID: 2, Quantity: 2},
			},
		},
	}
	repo := &stubFulfillmentRepo{}
	ordersRepo := &stubOrdersRepo{order: order}
	nurseriesRepo := &stubNurseriesRepo{
		nurseries: map[int64]*models.Nursery{7: {ID: 7}},
		stock: map[[2]int64]int{
			{7, 11}: 5,
			{7, 12}: 2,
		},
	}
	productsRepo := &stubProductsRepo{}
	svc := newTestService(t, repo, ordersRepo, nurseriesRepo, productsRepo)

	confirmed, err := svc.Confirm(context.Background(), 42)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if nurseriesRepo.decrements[[2]int64{7, 11}] != 3 || nurseriesRepo.decrements[[2]int64{7, 12}] != 2 {
		t.Fatalf("unexpected decrements %+v", nurseriesRepo.decrements)
	}
	if productsRepo.recomputed[11] != 1 || productsRepo.recomputed[12] != 1 {
		t.Fatalf("expected global recompute per product, got %+v", productsRepo.recomputed)
	}
	if repo.statusFrom != enums.FulfillmentStatusProposed || repo.statusTo != enums.FulfillmentStatusConfirmed {
		t.Fatalf("expected proposed->confirmed transition, got %s->%s", repo.statusFrom, repo.statusTo)
	}
	if ordersRepo.updatedStatus != string(enums.OrderStatusConfirmed) {
		t.Fatalf("expected order confirmed, got %q", ordersRepo.updatedStatus)
	}
	if confirmed == nil || confirmed.Status != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected confirmed order %+v", confirmed)
	}
}

func TestConfirmRequiresProposedFulfillments(t *testing.T) {
	order := placedOrder()
	order.Fulfillments = []models.OrderFulfillment{
		{ID: 100, OrderID: 42, NurseryID: int64Ptr(7), Status: enums.FulfillmentStatusConfirmed},
	}
	ordersRepo := &stubOrdersRepo{order: order}
	svc := newTestService(t, &stubFulfillmentRepo{}, ordersRepo, &stubNurseriesRepo{}, &stubProductsRepo{})

	_, err := svc.Confirm(context.Background(), 42)
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestConfirmRejectsInsufficientStock(t *testing.T) {
	order := placedOrder()
	order.Fulfillments = []models.OrderFulfillment{
		{
			ID:        100,
			OrderID:   42,
			NurseryID: int64Ptr(7),
			Status:    enums.FulfillmentStatusProposed,
			Items:     []models.OrderFulfillmentItem{{FulfillmentID: 100, OrderItemID: 1, Quantity: 3}},
		},
	}
	ordersRepo := &stubOrdersRepo{order: order}
	nurseriesRepo := &stubNurseriesRepo{
		nurseries: map[int64]*models.Nursery{7: {ID: 7}},
		stock:     map[[2]int64]int{{7, 11}: 1},
	}
	svc := newTestService(t, &stubFulfillmentRepo{}, ordersRepo, nurseriesRepo, &stubProductsRepo{})

	_, err := svc.Confirm(context.Background(), 42)
	assertErrorCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSetDeliveryContactRequiresConfirmedStatus(t *testing.T) {
	repo := &stubFulfillmentRepo{fulfillment: &models.OrderFulfillment{
		ID: 100, OrderID: 42, Status: enums.FulfillmentStatusProposed,
	}}
	svc := newTestService(t, repo, &stubOrdersRepo{}, &stubNurseriesRepo{}, &stubProductsRepo{})

	_, err := svc.SetDeliveryContact(context.Background(), DeliveryContactInput{
		FulfillmentID: 100,
		Name:          "Ada",
		Phone:         "555-0100",
	})
	assertErrorCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSetDeliveryContactConflictsWhenAlreadySet(t *testing.T) {
	repo := &stubFulfillmentRepo{fulfillment: &models.OrderFulfillment{
		ID: 100, OrderID: 42, Status: enums.FulfillmentStatusConfirmed,
		DeliveryName: strPtr("Grace"),
	}}
	svc := newTestService(t, repo, &stubOrdersRepo{}, &stubNurseriesRepo{}, &stubProductsRepo{})

	_, err := svc.SetDeliveryContact(context.Background(), DeliveryContactInput{
		FulfillmentID: 100,
		Name:          "Ada",
		Phone:         "555-0100",
	})
	assertErrorCode(t, err, pkgerrors.CodeConflict)
}

func TestSetDeliveryContactTrimsAndStores(t *testing.T) {
	repo := &stubFulfillmentRepo{fulfillment: &models.OrderFulfillment{
		ID: 100, OrderID: 42, Status: enums.FulfillmentStatusConfirmed,
	}}
	svc := newTestService(t, repo, &stubOrdersRepo{}, &stubNurseriesRepo{}, &stubProductsRepo{})

	blank := "   "
	updated, err := svc.SetDeliveryContact(context.Background(), DeliveryContactInput{
		FulfillmentID: 100,
		Name:          "  Ada ",
		Phone:         " 555-0100 ",
		Notes:         &blank,
	})
	if err != nil {
		t.Fatalf("set delivery contact: %v", err)
	}
	if repo.contactName != "Ada" || repo.contactPhone != "555-0100" {
		t.Fatalf("expected trimmed contact, got %q %q", repo.contactName, repo.contactPhone)
	}
	if repo.contactNotes != nil {
		t.Fatalf("blank notes should be dropped, got %v", *repo.contactNotes)
	}
	if updated.DeliveryName == nil || *updated.DeliveryName != "Ada" {
		t.Fatalf("unexpected DTO %+v", updated)
	}
}

func TestSetDeliveryContactRejectsEmptyName(t *testing.T) {
	svc := newTestService(t, &stubFulfillmentRepo{}, &stubOrdersRepo{}, &stubNurseriesRepo{}, &stubProductsRepo{})

	_, err := svc.SetDeliveryContact(context.Background(), DeliveryContactInput{
		FulfillmentID: 100,
		Name:          "   ",
		Phone:         "555-0100",
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func assertErrorCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, typed.Code(), err)
	}
}
