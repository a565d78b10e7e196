package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bloomhaus/bloomhaus-backend/internal/admin"
	"github.com/bloomhaus/bloomhaus-backend/internal/auth"
	"github.com/bloomhaus/bloomhaus-backend/internal/fulfillment"
	"github.com/bloomhaus/bloomhaus-backend/internal/nurseries"
	ordersvc "github.com/bloomhaus/bloomhaus-backend/internal/orders"
	productsvc "github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/internal/users"
	pkgAuth "github.com/bloomhaus/bloomhaus-backend/pkg/auth"
	"github.com/bloomhaus/bloomhaus-backend/pkg/auth/session"
	"github.com/bloomhaus/bloomhaus-backend/pkg/config"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	"github.com/bloomhaus/bloomhaus-backend/pkg/logger"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
	"github.com/bloomhaus/bloomhaus-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.TokenPair, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error { return nil }

func (stubAuthService) Me(ctx context.Context, userID int64) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID, Email: "stub@example.com", Role: enums.UserRoleCustomer}, nil
}

type stubProductsService struct{}

func (stubProductsService) List(ctx context.Context, params pagination.Params, filters productsvc.ListFilters) (*productsvc.ProductList, error) {
	return &productsvc.ProductList{Products: []productsvc.ProductDTO{}}, nil
}

func (stubProductsService) GetBySlug(ctx context.Context, slug string) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) Create(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductsService) Update(ctx context.Context, id int64, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

type stubNurseriesService struct{}

func (stubNurseriesService) List(ctx context.Context, params pagination.Params) (*nurseries.NurseryList, error) {
	return &nurseries.NurseryList{Nurseries: []nurseries.NurseryDTO{}}, nil
}

func (stubNurseriesService) Get(ctx context.Context, id int64) (*nurseries.NurseryDetail, error) {
	panic("unimplemented")
}

func (stubNurseriesService) Create(ctx context.Context, input nurseries.CreateNurseryInput) (*nurseries.NurseryDTO, error) {
	panic("unimplemented")
}

func (stubNurseriesService) Update(ctx context.Context, id int64, input nurseries.UpdateNurseryInput) (*nurseries.NurseryDTO, error) {
	panic("unimplemented")
}

func (stubNurseriesService) Delete(ctx context.Context, id int64) error { return nil }

func (stubNurseriesService) UpsertStock(ctx context.Context, input nurseries.UpsertStockInput) (*nurseries.NurseryDetail, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, input ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) GetMine(ctx context.Context, userID, orderID int64) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) ListMine(ctx context.Context, userID int64, params pagination.Params) (*ordersvc.OrderList, error) {
	return &ordersvc.OrderList{Orders: []ordersvc.OrderSummary{}, Page: params.Page}, nil
}

func (stubOrdersService) AdminGet(ctx context.Context, orderID int64) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) AdminList(ctx context.Context, params pagination.Params, filters ordersvc.AdminOrderFilters) (*ordersvc.OrderList, error) {
	return &ordersvc.OrderList{Orders: []ordersvc.OrderSummary{}, Page: params.Page}, nil
}

func (stubOrdersService) AdminUpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

type stubFulfillmentService struct{}

func (stubFulfillmentService) Suggestions(ctx context.Context, orderID int64) ([]fulfillment.NurserySuggestion, error) {
	return []fulfillment.NurserySuggestion{}, nil
}

func (stubFulfillmentService) Allocate(ctx context.Context, input fulfillment.AllocateInput) ([]ordersvc.FulfillmentDTO, error) {
	panic("unimplemented")
}

func (stubFulfillmentService) Confirm(ctx context.Context, orderID int64) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubFulfillmentService) SetDeliveryContact(ctx context.Context, input fulfillment.DeliveryContactInput) (*ordersvc.FulfillmentDTO, error) {
	panic("unimplemented")
}

type stubAdminService struct{}

func (stubAdminService) Metrics(ctx context.Context) (*admin.Metrics, error) {
	return &admin.Metrics{}, nil
}

func (stubAdminService) ListUsers(ctx context.Context, params pagination.Params) (*admin.UserList, error) {
	return &admin.UserList{Users: []users.UserDTO{}}, nil
}

func (stubAdminService) GetUser(ctx context.Context, id int64) (*users.UserDTO, error) {
	panic("unimplemented")
}

func (stubAdminService) CreateUser(ctx context.Context, input admin.CreateUserInput) (*users.UserDTO, error) {
	panic("unimplemented")
}

func (stubAdminService) UpdateUserRole(ctx context.Context, actorID, targetID int64, role enums.UserRole) (*users.UserDTO, error) {
	panic("unimplemented")
}

func (stubAdminService) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "bloomhaus",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           stubPinger{},
		Redis:        (*redis.Client)(nil),
		Sessions:     stubSessionChecker{},
		Auth:         stubAuthService{},
		Products:     stubProductsService{},
		Nurseries:    stubNurseriesService{},
		Orders:       stubOrdersService{},
		Fulfillments: stubFulfillmentService{},
		Admin:        stubAdminService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: 7,
		Email:  "router-test@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Bloomhaus-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-Bloomhaus-Env"))
	}
}

func TestCatalogIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersAcceptCustomerJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for customer got %d", resp.Code)
	}
}

func TestAdminOrdersRequireStaffRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/orders/admin/", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	staff := httptest.NewRequest(http.MethodGet, "/api/v1/orders/admin/", nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestNurseryAdminRequiresStaffRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/admin/nurseries/", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	staff := httptest.NewRequest(http.MethodGet, "/api/v1/admin/nurseries/", nil)
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleSuperAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for super admin got %d", resp.Code)
	}
}

func TestSuperAdminGroupRequiresSuperAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	adminReq := httptest.NewRequest(http.MethodGet, "/api/v1/super-admin/metrics", nil)
	adminReq.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, adminReq)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin got %d", resp.Code)
	}

	superReq := httptest.NewRequest(http.MethodGet, "/api/v1/super-admin/metrics", nil)
	superReq.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleSuperAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, superReq)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for super admin got %d", resp.Code)
	}
}

func TestAllocationSuggestionsRouteForStaff(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/admin/42/allocation-suggestions", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var body struct {
		Data struct {
			OrderID     int64             `json:"order_id"`
			Suggestions []json.RawMessage `json:"suggestions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.OrderID != 42 {
		t.Fatalf("expected order_id 42 in the response, got %d", body.Data.OrderID)
	}
	if body.Data.Suggestions == nil {
		t.Fatal("expected a suggestions array in the response")
	}
}
