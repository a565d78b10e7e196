package models

import (
	"time"

	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
)

// User is a storefront account. Staff accounts carry an Argon2id password
// hash; customer accounts may have none (checkout only requires a session).
type User struct {
	ID             int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Email          string         `gorm:"column:email;uniqueIndex;not null"`
	Name           *string        `gorm:"column:name"`
	AvatarURL      *string        `gorm:"column:avatar_url"`
	Role           enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	HashedPassword *string        `gorm:"column:hashed_password"`
	Orders         []Order        `gorm:"foreignKey:UserID"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
}
