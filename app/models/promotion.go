package models

import "time"

type Promotion struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"size:200;not null"`
	Products  []Product `gorm:"many2many:product_promotions;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
