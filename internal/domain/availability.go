package domain

import "time"

// AvailabilityBlock marks [StartTime, EndTime) on Date as open or closed for a space.
// Times are "HH:MM", dates are "YYYY-MM-DD".
type AvailabilityBlock struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	SpaceID     int64     `json:"space_id" gorm:"not null;uniqueIndex:idx_availability_slot,priority:1"`
	Date        string    `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:idx_availability_slot,priority:2"`
	StartTime   string    `json:"start_time" gorm:"type:varchar(5);not null;uniqueIndex:idx_availability_slot,priority:3"`
	EndTime     string    `json:"end_time" gorm:"type:varchar(5);not null;uniqueIndex:idx_availability_slot,priority:4"`
	IsAvailable bool      `json:"is_available" gorm:"not null"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Space *Space `json:"-" gorm:"foreignKey:SpaceID"`
}

func (AvailabilityBlock) TableName() string { return "availability_blocks" }
