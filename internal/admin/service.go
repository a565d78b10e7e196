package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bloomhaus/bloomhaus-backend/internal/orders"
	"github.com/bloomhaus/bloomhaus-backend/internal/users"
	"github.com/bloomhaus/bloomhaus-backend/pkg/config"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
	"github.com/bloomhaus/bloomhaus-backend/pkg/security"
	"gorm.io/gorm"
)

const recentOrdersLimit = 10

// Service defines the operations available to super admins.
type Service interface {
	Metrics(ctx context.Context) (*Metrics, error)
	ListUsers(ctx context.Context, params pagination.Params) (*UserList, error)
	GetUser(ctx context.Context, id int64) (*users.UserDTO, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*users.UserDTO, error)
	UpdateUserRole(ctx context.Context, actorID, targetID int64, role enums.UserRole) (*users.UserDTO, error)
	DeleteUser(ctx context.Context, actorID, targetID int64) error
}

type service struct {
	users       userRepository
	orders      orders.Repository
	products    productCounter
	nurseries   nurseryCounter
	passwordCfg config.PasswordConfig
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, params pagination.Params) ([]models.User, int64, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	Delete(ctx context.Context, id int64) error
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type productCounter interface {
	Count(ctx context.Context) (int64, error)
}

type nurseryCounter interface {
	Count(ctx context.Context) (int64, error)
}

// ServiceParams bundles the dependencies required to build an admin service.
type ServiceParams struct {
	UserRepo       userRepository
	OrderRepo      orders.Repository
	ProductRepo    productCounter
	NurseryRepo    nurseryCounter
	PasswordConfig config.PasswordConfig
}

// NewService constructs an admin service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.NurseryRepo == nil {
		return nil, fmt.Errorf("nursery repository is required")
	}
	return &service{
		users:       params.UserRepo,
		orders:      params.OrderRepo,
		products:    params.ProductRepo,
		nurseries:   params.NurseryRepo,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Metrics(ctx context.Context) (*Metrics, error) {
	roleCounts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count users")
	}
	roles := []enums.UserRole{enums.UserRoleCustomer, enums.UserRoleAdmin, enums.UserRoleSuperAdmin}
	byRole := make(map[enums.UserRole]int64, len(roles))
	for _, role := range roles {
		byRole[role] = roleCounts[role.String()]
	}

	orderCount, revenue, err := s.orders.SalesTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to aggregate orders")
	}

	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count products")
	}
	nurseryCount, err := s.nurseries.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count nurseries")
	}

	recent, err := s.orders.FindRecent(ctx, recentOrdersLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load recent orders")
	}
	summaries := make([]orders.OrderSummary, 0, len(recent))
	for i := range recent {
		summaries = append(summaries, orders.SummaryFromModel(&recent[i]))
	}

	return &Metrics{
		UsersByRole:  byRole,
		OrderCount:   orderCount,
		RevenueCents: revenue,
		ProductCount: productCount,
		NurseryCount: nurseryCount,
		RecentOrders: summaries,
	}, nil
}

func (s *service) ListUsers(ctx context.Context, params pagination.Params) (*UserList, error) {
	params = params.Normalize()
	rows, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list users")
	}
	dtos := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *users.FromModel(&rows[i]))
	}
	return &UserList{
		Users:      dtos,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: pagination.TotalPages(total, params.PageSize),
	}, nil
}

func (s *service) GetUser(ctx context.Context, id int64) (*users.UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:          email,
		Name:           input.Name,
		Role:           input.Role,
		HashedPassword: &hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create user")
	}
	return users.FromModel(user), nil
}

func (s *service) UpdateUserRole(ctx context.Context, actorID, targetID int64, role enums.UserRole) (*users.UserDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}
	if actorID == targetID {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot change your own role")
	}
	if _, err := s.findUser(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, targetID, role.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update role")
	}
	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete your own account")
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete user")
	}
	return nil
}

func (s *service) findUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load user")
	}
	return user, nil
}
