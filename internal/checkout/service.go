package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amendez21/storefront-backend/internal/cart"
	order "github.com/amendez21/storefront-backend/internal/orders"
	"github.com/amendez21/storefront-backend/pkg/config"
	"github.com/amendez21/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amendez21/storefront-backend/pkg/errors"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service turns the user's cart into an order.
type Service interface {
	Checkout(ctx context.Context, userID uint, cartKey string) (*order.OrderDTO, error)
}

type cartStore interface {
	Get(ctx context.Context, key string) (*cart.Cart, error)
	Clear(ctx context.Context, key string) (*cart.Cart, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockManager is the transactional product surface checkout needs.
type StockManager interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	DecrementStock(ctx context.Context, productID uint, qty int) error
}

// OrderCreator is the transactional order surface checkout needs.
type OrderCreator interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

// Deps wires the collaborators for the checkout flow. Products and Orders are
// factories so repositories can be rebound to the active transaction.
type Deps struct {
	Cart     cartStore
	DB       txRunner
	Products func(tx *gorm.DB) StockManager
	Orders   func(tx *gorm.DB) OrderCreator
}

type service struct {
	deps Deps
	cfg  config.CheckoutConfig
	logg *logger.Logger
}

// NewService constructs the checkout service.
func NewService(deps Deps, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product repository factory required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("order repository factory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{deps: deps, cfg: cfg, logg: logg}, nil
}

// Checkout validates the cart against current stock, simulates payment
// processing, then atomically decrements inventory and records the order.
// The cart is cleared only after the order is committed.
func (s *service) Checkout(ctx context.Context, userID uint, cartKey string) (*order.OrderDTO, error) {
	c, err := s.deps.Cart.Get(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if err := s.simulateProcessing(ctx); err != nil {
		return nil, err
	}

	var created *models.Order
	txErr := s.deps.DB.WithTx(ctx, func(tx *gorm.DB) error {
		products := s.deps.Products(tx)

		items := make([]models.OrderItem, 0, len(c.Items))
		for _, line := range c.Items {
			current, err := products.FindByID(ctx, line.Product.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict,
						fmt.Sprintf("product %q is no longer available", line.Product.Name))
				}
				return err
			}
			if current.Stock < line.Quantity {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("insufficient stock for %q", line.Product.Name)).
					WithDetails(map[string]any{
						"productId": line.Product.ID,
						"requested": line.Quantity,
						"available": current.Stock,
					})
			}
			if err := products.DecrementStock(ctx, line.Product.ID, line.Quantity); err != nil {
				return err
			}
			items = append(items, models.OrderItem{
				ProductID: line.Product.ID,
				Quantity:  line.Quantity,
				Price:     line.Product.Price,
			})
		}

		row := &models.Order{
			UserID: userID,
			Total:  c.TotalPrice,
			Status: models.OrderStatusCompleted,
			Items:  items,
		}
		created, err = s.deps.Orders(tx).Create(ctx, row)
		return err
	})
	if txErr != nil {
		if appErr := pkgerrors.As(txErr); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "create order")
	}

	if _, err := s.deps.Cart.Clear(ctx, cartKey); err != nil {
		fields := map[string]any{"cart_key": cartKey, "order_id": created.ID, "error": err.Error()}
		s.logg.Warn(s.logg.WithFields(ctx, fields), "cart clear after checkout failed")
	}

	dto := order.ToDTO(*created)
	return &dto, nil
}

// simulateProcessing stands in for a payment round trip. It honors context
// cancellation so a dropped request does not create an order.
func (s *service) simulateProcessing(ctx context.Context) error {
	delay := s.cfg.ProcessingDelay
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeInternal, ctx.Err(), "checkout interrupted")
	case <-timer.C:
		return nil
	}
}
