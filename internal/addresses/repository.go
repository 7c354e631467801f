package address

import (
	"context"

	"github.com/amendez21/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository wires address persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's saved addresses, default first.
func (r *Repository) ListByUser(ctx context.Context, userID uint) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindByIDForUser loads a single address scoped to its owner.
func (r *Repository) FindByIDForUser(ctx context.Context, addressID, userID uint) (*models.Address, error) {
	var a models.Address
	if err := r.db.WithContext(ctx).First(&a, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new address. When the row is flagged default, other
// addresses for the user are demoted in the same transaction.
func (r *Repository) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID); err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Update saves the address row, demoting other defaults when needed.
func (r *Repository) Update(ctx context.Context, address *models.Address) (*models.Address, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID); err != nil {
				return err
			}
		}
		return tx.Save(address).Error
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteForUser removes an address scoped to its owner and reports whether a
// row was deleted.
func (r *Repository) DeleteForUser(ctx context.Context, addressID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func clearDefault(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default", userID).
		Update("is_default", false).
		Error
}
