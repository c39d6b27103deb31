package models

import (
	"encoding/json"
	"time"

	"sentra/pkg/geo"

	"gorm.io/gorm"
)

// Geofence is a named polygonal region scoping alert routing within an
// organization. Vertices are stored as a JSON array of {lat,lng} for
// portability; point-in-polygon runs in application code (pkg/geo).
type Geofence struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Vertices       string         `gorm:"type:text;not null" json:"-"`
	Active         bool           `gorm:"default:true;index" json:"active"`
	CreatedByID    uint           `gorm:"not null" json:"created_by_id"` // set once at creation, never reassigned
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Organization Organization      `gorm:"foreignKey:OrganizationID" json:"-"`
	Officers     []GeofenceOfficer `gorm:"foreignKey:GeofenceID" json:"officers,omitempty"`
}

func (Geofence) TableName() string {
	return "geofences"
}

// Polygon decodes the stored vertex ring.
func (g *Geofence) Polygon() (geo.Polygon, error) {
	var p geo.Polygon
	if err := json.Unmarshal([]byte(g.Vertices), &p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPolygon encodes the vertex ring into the stored column.
func (g *Geofence) SetPolygon(p geo.Polygon) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	g.Vertices = string(b)
	return nil
}

// GeofenceOfficer links a geofence to an officer responsible for it.
type GeofenceOfficer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GeofenceID uint      `gorm:"not null;index:idx_geofence_officer,unique" json:"geofence_id"`
	OfficerID  uint      `gorm:"not null;index:idx_geofence_officer,unique" json:"officer_id"`
	CreatedAt  time.Time `json:"created_at"`

	Geofence Geofence `gorm:"foreignKey:GeofenceID" json:"-"`
	Officer  User     `gorm:"foreignKey:OfficerID" json:"-"`
}

func (GeofenceOfficer) TableName() string {
	return "geofence_officers"
}
