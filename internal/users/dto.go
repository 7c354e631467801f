package users

import (
	"time"

	"github.com/amendez21/storefront-backend/pkg/db/models"
)

// UserDTO is the account shape served to storefront clients. The password
// hash never leaves the service layer.
type UserDTO struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// FromModel maps a persisted user to its API shape.
func FromModel(u *models.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
