package fulfillment

import (
	"context"

	"github.com/bloomhaus/bloomhaus-backend/pkg/db/models"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	"gorm.io/gorm"
)

// CandidateStockRow is one (nursery, product) pairing with positive stock
// covering a product the order requested.
type CandidateStockRow struct {
	NurseryID    int64
	InternalName string
	City         string
	Commune      *string
	ProductID    int64
	Quantity     int
}

// Repository defines persistence operations for order fulfillments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCandidateStock(ctx context.Context, productIDs []int64) ([]CandidateStockRow, error)
	FindByOrder(ctx context.Context, orderID int64) ([]models.OrderFulfillment, error)
	FindByID(ctx context.Context, id int64) (*models.OrderFulfillment, error)
	DeleteProposedByOrder(ctx context.Context, orderID int64) error
	CreateBatch(ctx context.Context, fulfillments []models.OrderFulfillment) error
	UpdateStatusByOrder(ctx context.Context, orderID int64, from, to enums.FulfillmentStatus) error
	UpdateDeliveryContact(ctx context.Context, id int64, name, phone string, notes *string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCandidateStock(ctx context.Context, productIDs []int64) ([]CandidateStockRow, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []CandidateStockRow
	err := r.db.WithContext(ctx).
		Model(&models.NurseryInventory{}).
		Select("nurseries.id AS nursery_id, nurseries.internal_name, nurseries.city, nurseries.commune, nursery_inventory.product_id, nursery_inventory.quantity").
		Joins("JOIN nurseries ON nurseries.id = nursery_inventory.nursery_id").
		Where("nursery_inventory.product_id IN ? AND nursery_inventory.quantity > 0", productIDs).
		Order("nurseries.id ASC, nursery_inventory.product_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID int64) ([]models.OrderFulfillment, error) {
	var rows []models.OrderFulfillment
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.OrderFulfillment, error) {
	var row models.OrderFulfillment
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteProposedByOrder removes every still-proposed fulfillment for the
// order; confirmed rows are never touched.
func (r *repository) DeleteProposedByOrder(ctx context.Context, orderID int64) error {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderFulfillment{}).
		Where("order_id = ? AND status = ?", orderID, enums.FulfillmentStatusProposed).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Where("fulfillment_id IN ?", ids).
		Delete(&models.OrderFulfillmentItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.OrderFulfillment{}).Error
}

func (r *repository) CreateBatch(ctx context.Context, fulfillments []models.OrderFulfillment) error {
	if len(fulfillments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&fulfillments).Error
}

func (r *repository) UpdateStatusByOrder(ctx context.Context, orderID int64, from, to enums.FulfillmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderFulfillment{}).
		Where("order_id = ? AND status = ?", orderID, from).
		UpdateColumn("status", to).Error
}

func (r *repository) UpdateDeliveryContact(ctx context.Context, id int64, name, phone string, notes *string) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderFulfillment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivery_name":  name,
			"delivery_phone": phone,
			"delivery_notes": notes,
		}).Error
}
