package models

import "time"

const (
	MembershipGold   = "G"
	MembershipSilver = "S"
	MembershipBronze = "B"
)

// MembershipLabels maps the stored membership code to its display name.
var MembershipLabels = map[string]string{
	MembershipGold:   "Gold",
	MembershipSilver: "Silver",
	MembershipBronze: "Bronze",
}

type Customer struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"not null;uniqueIndex"`
	User       User       `gorm:"foreignKey:UserID"`
	Mobile     string     `gorm:"size:30"`
	BirthDate  *time.Time `gorm:"type:date"`
	Membership string     `gorm:"size:1;not null;default:'S'"`
	Addresses  []Address  `gorm:"foreignKey:CustomerID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
