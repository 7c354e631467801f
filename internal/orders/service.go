package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service exposes order history reads for authenticated users.
type Service interface {
	ListByUser(ctx context.Context, userID uint, page pagination.Params) (*ListResult, error)
	GetForUser(ctx context.Context, orderID, userID uint) (*OrderDTO, error)
}

type orderReader interface {
	ListByUser(ctx context.Context, userID uint, page pagination.Params) ([]models.Order, int64, error)
	FindByIDForUser(ctx context.Context, orderID, userID uint) (*models.Order, error)
}

type service struct {
	repo orderReader
}

// NewService constructs the order service.
func NewService(repo orderReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// ListByUser returns a page of the user's order history.
func (s *service) ListByUser(ctx context.Context, userID uint, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	orders := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, ToDTO(row))
	}
	return &ListResult{
		Orders:     orders,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: pagination.TotalPages(total, page.Limit),
	}, nil
}

// GetForUser returns a single order owned by the user. Orders belonging to
// other users surface as not found.
func (s *service) GetForUser(ctx context.Context, orderID, userID uint) (*OrderDTO, error) {
	row, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := ToDTO(*row)
	return &dto, nil
}
