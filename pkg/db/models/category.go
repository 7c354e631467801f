package models

import "time"

// Category groups catalog products.
type Category struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Path      *string   `gorm:"column:path"`
	ParentID  *uint     `gorm:"column:parent_id"`
	Slug      *string   `gorm:"column:slug;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
