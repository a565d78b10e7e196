package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bloomhaus/bloomhaus-backend/pkg/db"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	pkgerrors "github.com/bloomhaus/bloomhaus-backend/pkg/errors"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines catalog operations exposed to controllers.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error) {
	normalized := params.Normalize()
	rows, total, err := s.repo.List(ctx, normalized, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ProductList{
		Products:   out,
		Total:      total,
		Page:       normalized.Page,
		PageSize:   normalized.PageSize,
		TotalPages: pagination.TotalPages(total, normalized.PageSize),
	}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product kind")
	}
	if input.Attributes != nil && input.Attributes.PlantEnvironment != nil && !input.Attributes.PlantEnvironment.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plant environment")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	product := &models.Product{
		Slug:        slug,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Currency:    currency,
		Kind:        input.Kind,
		Active:      active,
		Inventory:   &models.Inventory{Quantity: 0},
	}
	if input.Attributes != nil {
		product.Attributes = &models.ProductAttributes{
			PlantEnvironment: input.Attributes.PlantEnvironment,
			Size:             input.Attributes.Size,
			Color:            input.Attributes.Color,
			CareInstructions: input.Attributes.CareInstructions,
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.PriceCents != nil && *input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	var out *ProductDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		updates := map[string]any{}
		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			updates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.PriceCents != nil {
			updates["price_cents"] = *input.PriceCents
		}
		if input.Active != nil {
			updates["active"] = *input.Active
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}

		if input.Attributes != nil {
			if input.Attributes.PlantEnvironment != nil && !input.Attributes.PlantEnvironment.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid plant environment")
			}
			attrs := &models.ProductAttributes{
				ProductID:        product.ID,
				PlantEnvironment: input.Attributes.PlantEnvironment,
				Size:             input.Attributes.Size,
				Color:            input.Attributes.Color,
				CareInstructions: input.Attributes.CareInstructions,
			}
			if err := repo.UpsertAttributes(ctx, attrs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert attributes")
			}
		}

		refreshed, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		out = FromModel(refreshed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// KindFilter parses the optional kind query value.
func KindFilter(raw string) (*enums.ProductKind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	kind, err := enums.ParseProductKind(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product kind")
	}
	return &kind, nil
}

// EnvironmentFilter parses the optional plant environment query value.
func EnvironmentFilter(raw string) (*enums.PlantEnvironment, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	env, err := enums.ParsePlantEnvironment(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plant environment")
	}
	return &env, nil
}
