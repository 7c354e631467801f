package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes saved-address CRUD for authenticated users.
type Service interface {
	List(ctx context.Context, userID uint) ([]AddressDTO, error)
	Get(ctx context.Context, addressID, userID uint) (*AddressDTO, error)
	Create(ctx context.Context, userID uint, input CreateAddressInput) (*AddressDTO, error)
	Update(ctx context.Context, addressID, userID uint, input UpdateAddressInput) (*AddressDTO, error)
	Delete(ctx context.Context, addressID, userID uint) error
}

type addressRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Address, error)
	FindByIDForUser(ctx context.Context, addressID, userID uint) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) (*models.Address, error)
	Update(ctx context.Context, address *models.Address) (*models.Address, error)
	DeleteForUser(ctx context.Context, addressID, userID uint) (bool, error)
}

type service struct {
	repo addressRepository
}

// NewService constructs the address service.
func NewService(repo addressRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{repo: repo}, nil
}

// List returns the user's saved addresses.
func (s *service) List(ctx context.Context, userID uint) ([]AddressDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

// Get returns a single address owned by the user.
func (s *service) Get(ctx context.Context, addressID, userID uint) (*AddressDTO, error) {
	row, err := s.load(ctx, addressID, userID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*row)
	return &dto, nil
}

// Create saves a new address for the user.
func (s *service) Create(ctx context.Context, userID uint, input CreateAddressInput) (*AddressDTO, error) {
	if err := validateRequired(input.Line1, input.City, input.State, input.PostalCode, input.Country); err != nil {
		return nil, err
	}
	row := &models.Address{
		UserID:     userID,
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      input.Line2,
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    strings.TrimSpace(input.Country),
		IsDefault:  input.IsDefault,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	dto := toDTO(*created)
	return &dto, nil
}

// Update applies the provided fields to an address owned by the user.
func (s *service) Update(ctx context.Context, addressID, userID uint, input UpdateAddressInput) (*AddressDTO, error) {
	row, err := s.load(ctx, addressID, userID)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	applyString(&row.Line1, input.Line1)
	applyString(&row.City, input.City)
	applyString(&row.State, input.State)
	applyString(&row.PostalCode, input.PostalCode)
	applyString(&row.Country, input.Country)
	if input.Line2 != nil {
		row.Line2 = input.Line2
	}
	if input.IsDefault != nil {
		row.IsDefault = *input.IsDefault
	}

	if err := validateRequired(row.Line1, row.City, row.State, row.PostalCode, row.Country); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	dto := toDTO(*updated)
	return &dto, nil
}

// Delete removes an address owned by the user.
func (s *service) Delete(ctx context.Context, addressID, userID uint) error {
	deleted, err := s.repo.DeleteForUser(ctx, addressID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, addressID, userID uint) (*models.Address, error) {
	row, err := s.repo.FindByIDForUser(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return row, nil
}

func validateRequired(line1, city, state, postalCode, country string) error {
	missing := make([]string, 0, 5)
	for _, field := range []struct {
		name  string
		value string
	}{
		{"line1", line1},
		{"city", city},
		{"state", state},
		{"postalCode", postalCode},
		{"country", country},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required address fields").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}
