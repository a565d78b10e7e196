package products

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	products  map[int64]*models.Product
	listRows  []models.Product
	listTotal int64
	created   *models.Product
	createErr error
	updates   map[string]any
	upserted  *models.ProductAttributes
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	product.ID = 31
	s.created = product
	return product, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for _, product := range s.products {
		if product.Slug == slug {
			return product, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, int64, error) {
	return s.listRows, s.listTotal, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	s.updates = updates
	product, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"].(string); ok {
		product.Name = v
	}
	if v, ok := updates["price_cents"].(int); ok {
		product.PriceCents = v
	}
	if v, ok := updates["active"].(bool); ok {
		product.Active = v
	}
	return nil
}

func (s *stubRepo) UpsertAttributes(ctx context.Context, attrs *models.ProductAttributes) error {
	s.upserted = attrs
	if product, ok := s.products[attrs.ProductID]; ok {
		product.Attributes = attrs
	}
	return nil
}

func (s *stubRepo) RecomputeGlobalInventory(ctx context.Context, productID int64) error {
	return nil
}

func (s *stubRepo) Count(ctx context.Context) (int64, error) { return int64(len(s.products)), nil }

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func assertErrorCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != want {
		t.Fatalf("expected code %s got %s (%v)", want, typed.Code(), err)
	}
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func TestCreateNormalizesSlugAndCurrency(t *testing.T) {
	repo := &stubRepo{products: map[int64]*models.Product{}}
	svc := newTestService(t, repo)

	dto, err := svc.Create(context.Background(), CreateProductInput{
		Slug:       "  Boston-Fern  ",
		Name:       "  Boston Fern ",
		PriceCents: 1800,
		Kind:       enums.ProductKindPlant,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Slug != "boston-fern" {
		t.Fatalf("expected lowercased slug, got %q", dto.Slug)
	}
	if dto.Name != "Boston Fern" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.Currency != "USD" {
		t.Fatalf("expected USD default, got %q", dto.Currency)
	}
	if !dto.Active {
		t.Fatal("expected products to default active")
	}
	if repo.created == nil || repo.created.Inventory == nil || repo.created.Inventory.Quantity != 0 {
		t.Fatal("expected a zero global inventory row alongside the product")
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestService(t, &stubRepo{products: map[int64]*models.Product{}})

	cases := []CreateProductInput{
		{Slug: "", Name: "Fern", PriceCents: 100, Kind: enums.ProductKindPlant},
		{Slug: "fern", Name: "   ", PriceCents: 100, Kind: enums.ProductKindPlant},
		{Slug: "fern", Name: "Fern", PriceCents: 0, Kind: enums.ProductKindPlant},
		{Slug: "fern", Name: "Fern", PriceCents: 100, Kind: enums.ProductKind("seed")},
	}
	for _, input := range cases {
		_, err := svc.Create(context.Background(), input)
		assertErrorCode(t, err, pkgerrors.CodeValidation)
	}
}

func TestCreateDuplicateSlugConflicts(t *testing.T) {
	repo := &stubRepo{
		products:  map[int64]*models.Product{},
		createErr: fmt.Errorf(`ERROR: duplicate key value violates unique constraint "products_slug_key"`),
	}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Slug:       "boston-fern",
		Name:       "Boston Fern",
		PriceCents: 1800,
		Kind:       enums.ProductKindPlant,
	})
	assertErrorCode(t, err, pkgerrors.CodeConflict)
}

func TestGetBySlug(t *testing.T) {
	repo := &stubRepo{products: map[int64]*models.Product{
		11: {ID: 11, Slug: "monstera", Name: "Monstera", PriceCents: 3200, Currency: "USD", Kind: enums.ProductKindPlant, Active: true},
	}}
	svc := newTestService(t, repo)

	dto, err := svc.GetBySlug(context.Background(), "monstera")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if dto.ID != 11 {
		t.Fatalf("expected product 11 got %d", dto.ID)
	}

	_, err = svc.GetBySlug(context.Background(), "missing")
	assertErrorCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.GetBySlug(context.Background(), "   ")
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateAppliesFieldsAndAttributes(t *testing.T) {
	repo := &stubRepo{products: map[int64]*models.Product{
		11: {ID: 11, Slug: "monstera", Name: "Monstera", PriceCents: 3200, Currency: "USD", Kind: enums.ProductKindPlant, Active: true},
	}}
	svc := newTestService(t, repo)

	env := enums.PlantEnvironmentIndoor
	dto, err := svc.Update(context.Background(), 11, UpdateProductInput{
		Name:       strPtr("  Monstera Deliciosa "),
		PriceCents: intPtr(3600),
		Attributes: &AttributesDTO{PlantEnvironment: &env, Size: strPtr("large")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Name != "Monstera Deliciosa" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.PriceCents != 3600 {
		t.Fatalf("expected price 3600 got %d", dto.PriceCents)
	}
	if repo.upserted == nil || repo.upserted.ProductID != 11 {
		t.Fatal("expected attributes upsert scoped to the product")
	}
	if dto.Attributes == nil || dto.Attributes.PlantEnvironment == nil || *dto.Attributes.PlantEnvironment != enums.PlantEnvironmentIndoor {
		t.Fatal("expected reloaded attributes on the response")
	}
}

func TestUpdateValidatesInput(t *testing.T) {
	repo := &stubRepo{products: map[int64]*models.Product{
		11: {ID: 11, Slug: "monstera", Name: "Monstera", PriceCents: 3200, Kind: enums.ProductKindPlant},
	}}
	svc := newTestService(t, repo)

	_, err := svc.Update(context.Background(), 0, UpdateProductInput{})
	assertErrorCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Update(context.Background(), 11, UpdateProductInput{PriceCents: intPtr(0)})
	assertErrorCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Update(context.Background(), 11, UpdateProductInput{Name: strPtr("   ")})
	assertErrorCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Update(context.Background(), 99, UpdateProductInput{})
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestListWrapsPagination(t *testing.T) {
	repo := &stubRepo{
		listRows: []models.Product{
			{ID: 11, Slug: "monstera", Name: "Monstera", Kind: enums.ProductKindPlant, Active: true},
			{ID: 12, Slug: "fern", Name: "Fern", Kind: enums.ProductKindPlant, Active: true},
		},
		listTotal: 5,
	}
	svc := newTestService(t, repo)

	list, err := svc.List(context.Background(), pagination.Params{Page: 1, PageSize: 2}, ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Products) != 2 {
		t.Fatalf("expected 2 rows got %d", len(list.Products))
	}
	if list.Total != 5 || list.TotalPages != 3 {
		t.Fatalf("expected total 5 over 3 pages, got %d/%d", list.Total, list.TotalPages)
	}
}

func TestKindFilter(t *testing.T) {
	kind, err := KindFilter(" bouquet ")
	if err != nil {
		t.Fatalf("parse kind: %v", err)
	}
	if kind == nil || *kind != enums.ProductKindBouquet {
		t.Fatalf("expected bouquet got %v", kind)
	}

	kind, err = KindFilter("")
	if err != nil || kind != nil {
		t.Fatalf("expected empty filter to pass through, got %v %v", kind, err)
	}

	_, err = KindFilter("seed")
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}
