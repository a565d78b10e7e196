package nurseries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the nursery management operations exposed to staff.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*NurseryList, error)
	Get(ctx context.Context, id int64) (*NurseryDetail, error)
	Create(ctx context.Context, input CreateNurseryInput) (*NurseryDTO, error)
	Update(ctx context.Context, id int64, input UpdateNurseryInput) (*NurseryDTO, error)
	Delete(ctx context.Context, id int64) error
	UpsertStock(ctx context.Context, input UpsertStockInput) (*NurseryDetail, error)
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
}

// NewService builds a nursery service with the required dependencies.
func NewService(repo Repository, productsRepo products.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("nurseries repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: productsRepo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*NurseryList, error) {
	normalized := params.Normalize()
	rows, total, err := s.repo.List(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list nurseries")
	}

	out := make([]NurseryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &NurseryList{
		Nurseries:  out,
		Total:      total,
		Page:       normalized.Page,
		PageSize:   normalized.PageSize,
		TotalPages: pagination.TotalPages(total, normalized.PageSize),
	}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*NurseryDetail, error) {
	nursery, err := s.findNursery(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	stock, err := s.repo.FindStock(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nursery stock")
	}
	return &NurseryDetail{
		NurseryDTO: *FromModel(nursery),
		Inventory:  stock,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateNurseryInput) (*NurseryDTO, error) {
	name := strings.TrimSpace(input.InternalName)
	city := strings.TrimSpace(input.City)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "internal name required")
	}
	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city required")
	}

	nursery := &models.Nursery{
		InternalName: name,
		City:         city,
		Commune:      input.Commune,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
	}
	if _, err := s.repo.Create(ctx, nursery); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create nursery")
	}
	return FromModel(nursery), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateNurseryInput) (*NurseryDTO, error) {
	if _, err := s.findNursery(ctx, s.repo, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.InternalName != nil {
		if strings.TrimSpace(*input.InternalName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "internal name cannot be empty")
		}
		updates["internal_name"] = strings.TrimSpace(*input.InternalName)
	}
	if input.City != nil {
		if strings.TrimSpace(*input.City) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "city cannot be empty")
		}
		updates["city"] = strings.TrimSpace(*input.City)
	}
	if input.Commune != nil {
		updates["commune"] = *input.Commune
	}
	if input.Latitude != nil {
		updates["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		updates["longitude"] = *input.Longitude
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update nursery")
	}

	nursery, err := s.findNursery(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(nursery), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	nursery, err := s.findNursery(ctx, s.repo, id)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock, err := repo.FindStock(ctx, nursery.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nursery stock")
		}
		if err := repo.Delete(ctx, nursery.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete nursery")
		}
		// cascading delete removed this nursery's stock; refresh global sums
		productsRepo := s.products.WithTx(tx)
		for _, line := range stock {
			if err := productsRepo.RecomputeGlobalInventory(ctx, line.ProductID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute inventory")
			}
		}
		return nil
	})
}

func (s *service) UpsertStock(ctx context.Context, input UpsertStockInput) (*NurseryDetail, error) {
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if _, err := s.findNursery(ctx, s.repo, input.NurseryID); err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpsertStock(ctx, input.NurseryID, input.ProductID, input.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert stock")
		}
		if err := s.products.WithTx(tx).RecomputeGlobalInventory(ctx, input.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute inventory")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, input.NurseryID)
}

func (s *service) findNursery(ctx context.Context, repo Repository, id int64) (*models.Nursery, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nursery id required")
	}
	nursery, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "nursery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load nursery")
	}
	return nursery, nil
}
