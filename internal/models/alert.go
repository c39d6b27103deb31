package models

import (
	"time"

	"gorm.io/gorm"
)

type Alert struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	OrganizationID     uint           `gorm:"not null;index" json:"organization_id"`
	ReporterID         uint           `gorm:"not null;index" json:"reporter_id"`
	CreatedByRole      string         `gorm:"size:20;not null" json:"created_by_role"` // USER | OFFICER
	Type               string         `gorm:"size:20;not null;index" json:"type"`      // emergency, security, general
	Message            string         `gorm:"type:text" json:"message"`
	Latitude           float64        `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude          float64        `gorm:"type:decimal(11,8);not null" json:"longitude"`
	PhotoURL           string         `gorm:"size:512" json:"photo_url"`
	Status             string         `gorm:"size:20;not null;default:'pending';index" json:"status"` // pending, completed
	AssignedOfficerID  *uint          `gorm:"index" json:"assigned_officer_id"`
	AssignedGeofenceID *uint          `gorm:"index" json:"assigned_geofence_id"`
	NeedsManualReview  bool           `gorm:"default:false;index" json:"needs_manual_review"`
	TriggerShareID     *uint          `gorm:"index" json:"trigger_share_id"` // live share the SOS was raised from, if any
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Organization     Organization       `gorm:"foreignKey:OrganizationID" json:"-"`
	Reporter         User               `gorm:"foreignKey:ReporterID" json:"-"`
	AssignedOfficer  *User              `gorm:"foreignKey:AssignedOfficerID" json:"assigned_officer,omitempty"`
	AssignedGeofence *Geofence          `gorm:"foreignKey:AssignedGeofenceID" json:"assigned_geofence,omitempty"`
	TriggerShare     *LiveLocationShare `gorm:"foreignKey:TriggerShareID" json:"-"`
}

func (Alert) TableName() string {
	return "alerts"
}
