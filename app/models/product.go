package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProtectedProductID is the seed product that can never be deleted.
const ProtectedProductID uint = 1

type Product struct {
	ID           uint            `gorm:"primaryKey"`
	Title        string          `gorm:"size:200;not null"`
	Slug         string          `gorm:"size:255;not null;index"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	CategoryID   uint            `gorm:"not null;index"`
	Category     Category        `gorm:"foreignKey:CategoryID"`
	Promotions   []Promotion     `gorm:"many2many:product_promotions;"`
	Images       []ProductImage  `gorm:"foreignKey:ProductID"`
	Reviews      []Review        `gorm:"foreignKey:ProductID"`
	WhenUploaded time.Time       `gorm:"autoCreateTime;index"`
	LastUpdated  time.Time       `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt  `gorm:"index"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	Image     string `gorm:"size:255;not null"`
	CreatedAt time.Time
}
