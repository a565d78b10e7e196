package nurseries

import (
	"context"

	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for nurseries and their stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, nursery *models.Nursery) (*models.Nursery, error)
	FindByID(ctx context.Context, id int64) (*models.Nursery, error)
	List(ctx context.Context, params pagination.Params) ([]models.Nursery, int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
	FindStock(ctx context.Context, nurseryID int64) ([]StockLine, error)
	FindStockLine(ctx context.Context, nurseryID, productID int64) (*models.NurseryInventory, error)
	UpsertStock(ctx context.Context, nurseryID, productID int64, quantity int) error
	DecrementStock(ctx context.Context, nurseryID, productID int64, quantity int) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a nurseries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, nursery *models.Nursery) (*models.Nursery, error) {
	if err := r.db.WithContext(ctx).Create(nursery).Error; err != nil {
		return nil, err
	}
	return nursery, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Nursery, error) {
	var nursery models.Nursery
	if err := r.db.WithContext(ctx).First(&nursery, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &nursery, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Nursery, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Nursery{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Nursery
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
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
		Model(&models.Nursery{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Nursery{}, "id = ?", id).Error
}

func (r *repository) FindStock(ctx context.Context, nurseryID int64) ([]StockLine, error) {
	var lines []StockLine
	err := r.db.WithContext(ctx).
		Model(&models.NurseryInventory{}).
		Select("nursery_inventory.product_id, products.name AS product_name, nursery_inventory.quantity").
		Joins("JOIN products ON products.id = nursery_inventory.product_id").
		Where("nursery_inventory.nursery_id = ?", nurseryID).
		Order("products.name ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindStockLine(ctx context.Context, nurseryID, productID int64) (*models.NurseryInventory, error) {
	var line models.NurseryInventory
	err := r.db.WithContext(ctx).
		First(&line, "nursery_id = ? AND product_id = ?", nurseryID, productID).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpsertStock(ctx context.Context, nurseryID, productID int64, quantity int) error {
	existing, err := r.FindStockLine(ctx, nurseryID, productID)
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(&models.NurseryInventory{
			NurseryID: nurseryID,
			ProductID: productID,
			Quantity:  quantity,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.NurseryInventory{}).
		Where("id = ?", existing.ID).
		UpdateColumn("quantity", quantity).Error
}

// DecrementStock subtracts quantity guarding against going negative.
func (r *repository) DecrementStock(ctx context.Context, nurseryID, productID int64, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.NurseryInventory{}).
		Where("nursery_id = ? AND product_id = ? AND quantity >= ?", nurseryID, productID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count reports the total number of registered nurseries.
func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Nursery{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
