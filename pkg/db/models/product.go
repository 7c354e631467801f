package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. The cart never references these rows
// directly; it stores a snapshot captured at add time.
type Product struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Path        string          `gorm:"column:path;not null;default:''"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	CategoryID  uint            `gorm:"column:category_id;not null"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
	Slug        *string         `gorm:"column:slug;uniqueIndex"`
	Keywords    pq.StringArray  `gorm:"column:keywords;type:text[]"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
