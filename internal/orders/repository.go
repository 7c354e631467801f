package order

import (
	"context"

	"github.com/amendez21/storefront-backend/pkg/db/models"
	"github.com/amendez21/storefront-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository wires order persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order and its items in one statement tree.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser returns the user's order history, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uint, page pagination.Params) ([]models.Order, int64, error) {
	page = page.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := qb.
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByIDForUser loads a single order, scoped to its owner.
func (r *Repository) FindByIDForUser(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&o, "id = ? AND user_id = ?", orderID, userID).
		Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}
