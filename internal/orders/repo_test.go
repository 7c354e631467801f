package order

import (
	"context"
	"testing"
	"time"

	"github.com/amendez21/storefront-backend/pkg/db/models"
	"github.com/amendez21/storefront-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  path TEXT,
  parent_id INTEGER,
  slug TEXT UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  path TEXT NOT NULL DEFAULT '',
  stock INTEGER NOT NULL DEFAULT 0,
  category_id INTEGER NOT NULL,
  slug TEXT UNIQUE,
  keywords TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(categories).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()

	cat := &models.Category{Name: name + " category"}
	require.NoError(t, db.Create(cat).Error)

	p := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString("10.00"),
		Stock:      100,
		CategoryID: cat.ID,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createTestOrder(t *testing.T, db *gorm.DB, userID uint, product *models.Product, qty int, created time.Time) *models.Order {
	t.Helper()

	price := decimal.RequireFromString("10.00")
	o := &models.Order{
		UserID: userID,
		Total:  price.Mul(decimal.NewFromInt(int64(qty))),
		Status: models.OrderStatusCompleted,
		Items: []models.OrderItem{
			{ProductID: product.ID, Quantity: qty, Price: price},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func TestRepositoryCreate_insertsItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Espresso Blend")
	order := &models.Order{
		UserID: 7,
		Total:  decimal.RequireFromString("20.00"),
		Status: models.OrderStatusCompleted,
		Items: []models.OrderItem{
			{ProductID: product.ID, Quantity: 2, Price: decimal.RequireFromString("10.00")},
		},
	}

	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	var count int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRepositoryListByUser_newestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Espresso Blend")
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	first := createTestOrder(t, db, 7, product, 1, base)
	second := createTestOrder(t, db, 7, product, 2, base.Add(time.Hour))
	createTestOrder(t, db, 9, product, 3, base)

	rows, total, err := repo.ListByUser(ctx, 7, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)

	require.Len(t, rows[0].Items, 1)
	require.NotNil(t, rows[0].Items[0].Product)
	assert.Equal(t, "Espresso Blend", rows[0].Items[0].Product.Name)
}

func TestRepositoryFindByIDForUser_scopesToOwner(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Espresso Blend")
	order := createTestOrder(t, db, 7, product, 1, time.Now().UTC())

	found, err := repo.FindByIDForUser(ctx, order.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByIDForUser(ctx, order.ID, 9)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
