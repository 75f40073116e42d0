package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart ids are random so that a cart is only reachable by whoever holds its id.
type Cart struct {
	ID       string     `gorm:"size:36;primaryKey"`
	Items    []CartItem `gorm:"foreignKey:CartID"`
	PlacedAt time.Time  `gorm:"autoCreateTime"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
