package models

import (
	"fmt"
	"time"

	"sentra/internal/domain"

	"gorm.io/gorm"
)

// LiveLocationShare is one live-location sharing session. Exactly one of
// UserID/OfficerID is set; the check constraint mirrors the application-level
// invariant so concurrent writers cannot race past it. ActiveKey is the
// actor key while the session is ACTIVE and NULL once stopped, so the unique
// index enforces one active session per actor at the storage layer.
type LiveLocationShare struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          *uint      `gorm:"index;check:chk_share_actor,(user_id IS NULL) <> (officer_id IS NULL)" json:"user_id,omitempty"`
	OfficerID       *uint      `gorm:"index" json:"officer_id,omitempty"`
	Token           string     `gorm:"uniqueIndex;size:64;not null" json:"token"`
	PlanType        string     `gorm:"size:20;not null" json:"plan_type"` // plan at session start
	Status          string     `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	StopReason      *string    `gorm:"size:20" json:"stop_reason,omitempty"` // user, limit, expired
	ActiveKey       *string    `gorm:"uniqueIndex;size:40" json:"-"`
	LastBroadcastAt *time.Time `json:"last_broadcast_at,omitempty"`
	StoppedAt       *time.Time `json:"stopped_at,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	User    *User `gorm:"foreignKey:UserID" json:"-"`
	Officer *User `gorm:"foreignKey:OfficerID" json:"-"`

	TrackPoints []LiveLocationTrackPoint `gorm:"foreignKey:ShareID;constraint:OnDelete:CASCADE" json:"-"`
}

func (LiveLocationShare) TableName() string {
	return "live_location_shares"
}

// BeforeSave enforces actor mutual exclusivity on every write path.
func (s *LiveLocationShare) BeforeSave(tx *gorm.DB) error {
	if (s.UserID == nil) == (s.OfficerID == nil) {
		return domain.ErrActorRequired
	}
	return nil
}

// ActorKey identifies the sharing actor across both kinds.
func (s *LiveLocationShare) ActorKey() string {
	if s.UserID != nil {
		return fmt.Sprintf("U:%d", *s.UserID)
	}
	if s.OfficerID != nil {
		return fmt.Sprintf("O:%d", *s.OfficerID)
	}
	return ""
}

func (s *LiveLocationShare) IsActive() bool {
	return s.Status == domain.ShareStatusActive
}

// LiveLocationTrackPoint is one recorded location sample. Points are
// append-only and RecordedAt is non-decreasing within a share.
type LiveLocationTrackPoint struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ShareID    uint      `gorm:"not null;index:idx_share_recorded,priority:1" json:"share_id"`
	Latitude   float64   `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude  float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	RecordedAt time.Time `gorm:"not null;index:idx_share_recorded,priority:2" json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`

	Share LiveLocationShare `gorm:"foreignKey:ShareID" json:"-"`
}

func (LiveLocationTrackPoint) TableName() string {
	return "live_location_track_points"
}
