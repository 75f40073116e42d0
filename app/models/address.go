package models

import (
	"time"
)

const (
	ContactResidential = "res"
	ContactWork        = "work"
)

type Address struct {
	ID          uint   `gorm:"primaryKey"`
	CustomerID  uint   `gorm:"not null;index"`
	ContactType string `gorm:"size:200;not null"`
	Street      string `gorm:"size:200;not null"`
	City        string `gorm:"size:70;not null"`
	State       string `gorm:"size:20;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
