package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// OrderStatuses lists the values accepted for both payment and delivery status.
var OrderStatuses = []string{StatusPending, StatusCompleted, StatusFailed}

type Order struct {
	ID             uint        `gorm:"primaryKey"`
	Code           string      `gorm:"size:32;not null;uniqueIndex"`
	CustomerID     uint        `gorm:"not null;index"`
	Customer       Customer    `gorm:"foreignKey:CustomerID"`
	Items          []OrderItem `gorm:"foreignKey:OrderID"`
	PaymentStatus  string      `gorm:"size:50;not null;default:'pending'"`
	DeliveryStatus string      `gorm:"size:50;not null;default:'pending'"`
	PaymentToken   string      `gorm:"size:255"`
	PaymentURL     string      `gorm:"type:text"`
	PlacedAt       time.Time   `gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.Code == "" {
		o.Code = fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = StatusPending
	}
	if o.DeliveryStatus == "" {
		o.DeliveryStatus = StatusPending
	}
	return
}
