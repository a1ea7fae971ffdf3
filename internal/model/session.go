package model

import (
	"time"

	"gorm.io/gorm"
)

// UserSession binds a verified identity token to a time-bounded
// authorization window. At most one row per user has is_active=true.
// Rows are never deleted, only deactivated.
type UserSession struct {
	gorm.Model
	UserID    uint      `gorm:"column:user_id;index;not null"`
	Token     string    `gorm:"column:token;index;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true;not null;index:idx_sessions_active,where:is_active"`
}
