package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/pkg/config"
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

type stubRepo struct {
	order         *models.Order
	created       *models.Order
	listed        []models.Order
	listedTotal   int64
	updatedStatus string
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = 42
	s.created = order
	return order, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubRepo) ListByUser(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, int64, error) {
	return s.listed, s.listedTotal, nil
}

func (s *stubRepo) ListAdmin(ctx context.Context, params pagination.Params, filters AdminOrderFilters) ([]models.Order, int64, error) {
	return s.listed, s.listedTotal, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	s.updatedStatus = status
	return nil
}

func (s *stubRepo) SalesTotals(ctx context.Context) (int64, int64, error) { return 0, 0, nil }

func (s *stubRepo) FindRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return nil, nil
}

type stubProductsRepo struct {
	products map[int64]*models.Product
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductsRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	return p, nil
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
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
	return nil
}

func (s *stubProductsRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func newTestService(t *testing.T, repo *stubRepo, productsRepo *stubProductsRepo) Service {
	t.Helper()
	svc, err := NewService(repo, productsRepo, stubTx{}, config.CheckoutConfig{
		ShippingFlatCents: 500,
		TaxRateBps:        800,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func catalogFixture() *stubProductsRepo {
	return &stubProductsRepo{products: map[int64]*models.Product{
		11: {ID: 11, Slug: "boston-fern", Name: "Boston Fern", PriceCents: 1800, Currency: "USD", Active: true},
		12: {ID: 12, Slug: "monstera", Name: "Monstera", PriceCents: 3200, Currency: "USD", Active: true},
		13: {ID: 13, Slug: "retired-rose", Name: "Retired Rose", PriceCents: 900, Currency: "USD", Active: false},
	}}
}

func checkoutAddress() AddressInput {
	return AddressInput{
		FullName:      "Ada Lovelace",
		StreetAddress: "12 Garden Way",
		City:          "Portland",
		PostalCode:    "97209",
		Country:       "US",
	}
}

func TestCreateComputesTotals(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, catalogFixture())

	order, err := svc.Create(context.Background(), CreateOrderInput{
		UserID: 5,
		Items: []CreateOrderItemInput{
			{ProductID: 11, Quantity: 2}, // 3600
			{ProductID: 12, Quantity: 1}, // 3200
		},
		Address: checkoutAddress(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.SubtotalCents != 6800 {
		t.Fatalf("expected subtotal 6800, got %d", order.SubtotalCents)
	}
	if order.ShippingCents != 500 {
		t.Fatalf("expected flat shipping 500, got %d", order.ShippingCents)
	}
	// 8% of 6800, truncated
	if order.TaxCents != 544 {
		t.Fatalf("expected tax 544, got %d", order.TaxCents)
	}
	if order.TotalCents != 7844 {
		t.Fatalf("expected total 7844, got %d", order.TotalCents)
	}
	if order.Status != enums.OrderStatusPlaced {
		t.Fatalf("expected placed status, got %s", order.Status)
	}
	if repo.created == nil || repo.created.ShippingAddress == nil {
		t.Fatal("expected order persisted with shipping address")
	}
	if repo.created.Items[0].UnitPriceCents != 1800 || repo.created.Items[0].ProductName != "Boston Fern" {
		t.Fatalf("expected price snapshot on order line, got %+v", repo.created.Items[0])
	}
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, catalogFixture())

	_, err := svc.Create(context.Background(), CreateOrderInput{
		UserID:  5,
		Items:   []CreateOrderItemInput{{ProductID: 13, Quantity: 1}},
		Address: checkoutAddress(),
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, catalogFixture())

	_, err := svc.Create(context.Background(), CreateOrderInput{
		UserID:  5,
		Items:   []CreateOrderItemInput{{ProductID: 99, Quantity: 1}},
		Address: checkoutAddress(),
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, catalogFixture())

	_, err := svc.Create(context.Background(), CreateOrderInput{
		UserID:  5,
		Items:   []CreateOrderItemInput{{ProductID: 11, Quantity: 0}},
		Address: checkoutAddress(),
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRequiresItems(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, catalogFixture())

	_, err := svc.Create(context.Background(), CreateOrderInput{
		UserID:  5,
		Address: checkoutAddress(),
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRequiresUser(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, catalogFixture())

	_, err := svc.Create(context.Background(), CreateOrderInput{
		Items:   []CreateOrderItemInput{{ProductID: 11, Quantity: 1}},
		Address: checkoutAddress(),
	})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestGetMineHidesForeignOrders(t *testing.T) {
	ownerID := int64(5)
	repo := &stubRepo{order: &models.Order{ID: 42, UserID: &ownerID, Status: enums.OrderStatusPlaced}}
	svc := newTestService(t, repo, catalogFixture())

	if _, err := svc.GetMine(context.Background(), 5, 42); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}

	_, err := svc.GetMine(context.Background(), 6, 42)
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestListMineBuildsSummaries(t *testing.T) {
	ownerID := int64(5)
	repo := &stubRepo{
		listed: []models.Order{
			{
				ID: 1, UserID: &ownerID, Status: enums.OrderStatusPlaced,
				TotalCents: 7844, Currency: "USD",
				Items: []models.OrderItem{{Quantity: 2}, {Quantity: 1}},
			},
		},
		listedTotal: 51,
	}
	svc := newTestService(t, repo, catalogFixture())

	list, err := svc.ListMine(context.Background(), 5, pagination.Params{Page: 1, PageSize: 25})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Orders) != 1 || list.Orders[0].TotalItems != 3 {
		t.Fatalf("unexpected summaries %+v", list.Orders)
	}
	if list.Total != 51 || list.TotalPages != 3 {
		t.Fatalf("unexpected pagination %+v", list)
	}
}

func TestAdminUpdateStatusRejectsInvalid(t *testing.T) {
	repo := &stubRepo{order: &models.Order{ID: 42, Status: enums.OrderStatusPlaced}}
	svc := newTestService(t, repo, catalogFixture())

	_, err := svc.AdminUpdateStatus(context.Background(), 42, enums.OrderStatus("teleported"))
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestAdminUpdateStatusRejectsCancelledOrders(t *testing.T) {
	repo := &stubRepo{order: &models.Order{ID: 42, Status: enums.OrderStatusCancelled}}
	svc := newTestService(t, repo, catalogFixture())

	_, err := svc.AdminUpdateStatus(context.Background(), 42, enums.OrderStatusConfirmed)
	assertErrorCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAdminUpdateStatusPersists(t *testing.T) {
	repo := &stubRepo{order: &models.Order{ID: 42, Status: enums.OrderStatusPlaced}}
	svc := newTestService(t, repo, catalogFixture())

	order, err := svc.AdminUpdateStatus(context.Background(), 42, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if repo.updatedStatus != string(enums.OrderStatusConfirmed) {
		t.Fatalf("expected confirmed persisted, got %q", repo.updatedStatus)
	}
	if order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected status %s", order.Status)
	}
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
