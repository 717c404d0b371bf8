package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pepdine/pep-backend/pkg/enums"
)

// User is a registered customer, an admin, or a session-scoped guest.
type User struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email          *string        `gorm:"column:email;uniqueIndex:ux_users_email"`
	PasswordHash   *string        `gorm:"column:password_hash"`
	Name           string         `gorm:"column:name;not null"`
	Phone          *string        `gorm:"column:phone"`
	Role           enums.UserRole `gorm:"column:role;type:text;not null"`
	IsGuest        bool           `gorm:"column:is_guest;not null"`
	GuestSessionID *string        `gorm:"column:guest_session_id;uniqueIndex:ux_users_guest_session"`
	IsActive       bool           `gorm:"column:is_active;not null"`
	LastLoginAt    *time.Time     `gorm:"column:last_login_at"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
