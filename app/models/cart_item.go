package models

import (
	"time"
)

type CartItem struct {
	ID        uint    `gorm:"primaryKey"`
	CartID    string  `gorm:"size:36;not null;uniqueIndex:idx_cart_product"`
	Cart      *Cart   `gorm:"foreignKey:CartID"`
	ProductID uint    `gorm:"not null;uniqueIndex:idx_cart_product"`
	Product   Product `gorm:"foreignKey:ProductID"`
	Quantity  int     `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
