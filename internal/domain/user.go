package domain

import "time"

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleManager UserRole = "manager"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"size:255"`
	Role         UserRole  `json:"role" gorm:"size:16;not null;default:user"`
	Name         string    `json:"name" gorm:"size:255"`
	Phone        string    `json:"phone,omitempty" gorm:"size:32"`
	FCMToken     string    `json:"-" gorm:"column:fcm_token;size:512"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
