package models

import "time"

type Review struct {
	ID           uint      `gorm:"primaryKey"`
	ProductID    uint      `gorm:"not null;index"`
	Product      Product   `gorm:"foreignKey:ProductID"`
	ReviewerName string    `gorm:"size:250;not null"`
	Remark       string    `gorm:"type:text;not null"`
	PostedAt     time.Time `gorm:"type:date;not null"`
}
