package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location groups spaces under one manager.
type Location struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Address   string    `json:"address,omitempty" gorm:"size:512"`
	ManagerID int64     `json:"manager_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Manager *User `json:"-" gorm:"foreignKey:ManagerID"`
}

func (Location) TableName() string { return "locations" }

type Space struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	LocationID int64           `json:"location_id" gorm:"not null;index"`
	Name       string          `json:"name" gorm:"size:255;not null"`
	Capacity   int             `json:"capacity" gorm:"not null;default:1"`
	HourlyRate decimal.Decimal `json:"hourly_rate" gorm:"type:decimal(12,2);not null"`
	DailyRate  decimal.Decimal `json:"daily_rate" gorm:"type:decimal(12,2);not null;default:0"`
	IsActive   bool            `json:"is_active" gorm:"not null"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (Space) TableName() string { return "spaces" }
