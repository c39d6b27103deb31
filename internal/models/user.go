package models

import (
	"time"

	"sentra/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	Username       string         `gorm:"uniqueIndex;size:64;not null;default:''" json:"username"`
	Email          string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string         `gorm:"size:255" json:"-"`
	Role           string         `gorm:"size:20;not null;index" json:"role"` // USER | OFFICER | ADMIN
	Phone          string         `gorm:"size:32" json:"phone"`
	Active         bool           `gorm:"default:true;index" json:"active"`
	FCMToken       string         `gorm:"size:512" json:"-"` // For push notifications
	CreatedByID    *uint          `gorm:"index" json:"created_by_id"` // set once at creation, never reassigned
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (u *User) IsOfficer() bool { return u.Role == domain.RoleOfficer }
func (u *User) IsAdmin() bool   { return u.Role == domain.RoleAdmin }

// Eligible reports whether the user can receive alert assignments.
func (u *User) Eligible() bool { return u.Role == domain.RoleOfficer && u.Active }
