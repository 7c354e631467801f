package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
)

// Service wraps the cart aggregate with durable storage: every mutation loads
// the caller's cart, applies the pure operation, and persists the result.
// Persisting is best-effort; a failed save is logged and never surfaced, so
// every mutation stays total from the caller's perspective. Loads that fail
// for reasons other than absence are surfaced as dependency errors.
type Service struct {
	persister Persister
	logg      *logger.Logger
}

// NewService builds the cart service on top of the provided persister.
func NewService(persister Persister, logg *logger.Logger) (*Service, error) {
	if persister == nil {
		return nil, fmt.Errorf("cart persister is required")
	}
	return &Service{persister: persister, logg: logg}, nil
}

// Get returns the caller's cart, or a fresh empty cart when none is stored.
func (s *Service) Get(ctx context.Context, key string) (*Cart, error) {
	return s.load(ctx, key)
}

// AddItem merges the product into the cart and persists the result.
func (s *Service) AddItem(ctx context.Context, key string, product ProductSnapshot, quantity int) (*Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}
	return s.mutate(ctx, key, func(c *Cart) {
		c.AddItem(product, quantity)
	})
}

// RemoveItem drops the line item and persists; absent ids are a no-op.
func (s *Service) RemoveItem(ctx context.Context, key, itemID string) (*Cart, error) {
	return s.mutate(ctx, key, func(c *Cart) {
		c.RemoveItem(itemID)
	})
}

// UpdateQuantity sets an absolute quantity; non-positive values delete the
// line item.
func (s *Service) UpdateQuantity(ctx context.Context, key, itemID string, quantity int) (*Cart, error) {
	return s.mutate(ctx, key, func(c *Cart) {
		c.UpdateQuantity(itemID, quantity)
	})
}

// Clear empties the cart and persists the empty state.
func (s *Service) Clear(ctx context.Context, key string) (*Cart, error) {
	return s.mutate(ctx, key, func(c *Cart) {
		c.Clear()
	})
}

// Quantity reports the stored quantity for the product, 0 when absent.
func (s *Service) Quantity(ctx context.Context, key string, productID uint) (int, error) {
	cart, err := s.load(ctx, key)
	if err != nil {
		return 0, err
	}
	return cart.Quantity(productID), nil
}

// Contains reports whether the product is currently in the cart.
func (s *Service) Contains(ctx context.Context, key string, productID uint) (bool, error) {
	cart, err := s.load(ctx, key)
	if err != nil {
		return false, err
	}
	return cart.Contains(productID), nil
}

func (s *Service) load(ctx context.Context, key string) (*Cart, error) {
	if strings.TrimSpace(key) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart key is required")
	}
	cart, err := s.persister.Load(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart == nil {
		return New(), nil
	}
	return cart, nil
}

func (s *Service) mutate(ctx context.Context, key string, op func(*Cart)) (*Cart, error) {
	cart, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	op(cart)

	if err := s.persister.Save(ctx, key, cart); err != nil {
		if s.logg != nil {
			ctx = s.logg.WithCartKey(ctx, key)
			ctx = s.logg.WithField(ctx, "error", err.Error())
			s.logg.Warn(ctx, "cart save failed, continuing with in-memory state")
		}
	}
	return cart, nil
}
