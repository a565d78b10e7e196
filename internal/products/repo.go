package products

import (
	"context"
	"strings"

	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the catalog tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	UpsertAttributes(ctx context.Context, attrs *models.ProductAttributes) error
	RecomputeGlobalInventory(ctx context.Context, productID int64) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Attributes").
		Preload("Inventory").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Attributes").
		Preload("Inventory").
		First(&product, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if !filters.IncludeInactive {
		query = query.Where("active = ?", true)
	}
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.Environment != nil {
		query = query.
			Joins("JOIN product_attributes ON product_attributes.product_id = products.id").
			Where("product_attributes.plant_environment IN ?", []string{string(*filters.Environment), "both"})
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(COALESCE(products.description, '')) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Preload("Attributes").
		Preload("Inventory").
		Order("products.created_at DESC, products.id DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpsertAttributes(ctx context.Context, attrs *models.ProductAttributes) error {
	var existing models.ProductAttributes
	err := r.db.WithContext(ctx).First(&existing, "product_id = ?", attrs.ProductID).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(attrs).Error
	}
	if err != nil {
		return err
	}
	attrs.ID = existing.ID
	return r.db.WithContext(ctx).Save(attrs).Error
}

// RecomputeGlobalInventory rewrites the product's derived stock as the sum of
// all nursery quantities.
func (r *repository) RecomputeGlobalInventory(ctx context.Context, productID int64) error {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.NurseryInventory{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}

	var inv models.Inventory
	err = r.db.WithContext(ctx).First(&inv, "product_id = ?", productID).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(&models.Inventory{
			ProductID: productID,
			Quantity:  int(total),
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ?", inv.ID).
		UpdateColumn("quantity", int(total)).Error
}

// Count reports the total number of catalog products, active or not.
func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
