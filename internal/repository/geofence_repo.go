package repository

import (
	"sentra/internal/models"

	"gorm.io/gorm"
)

type GeofenceRepository struct {
	db *gorm.DB
}

func NewGeofenceRepository(db *gorm.DB) *GeofenceRepository {
	return &GeofenceRepository{db: db}
}

func (r *GeofenceRepository) WithTx(tx *gorm.DB) *GeofenceRepository {
	return &GeofenceRepository{db: tx}
}

func (r *GeofenceRepository) Create(g *models.Geofence) error {
	return r.db.Create(g).Error
}

func (r *GeofenceRepository) GetByID(id uint) (*models.Geofence, error) {
	var g models.Geofence
	err := r.db.First(&g, id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ActiveByOrg returns active geofences for an organization ordered by
// ascending ID (stable tie-break for single-assignment callers).
func (r *GeofenceRepository) ActiveByOrg(orgID uint) ([]models.Geofence, error) {
	var fences []models.Geofence
	err := r.db.
		Where("organization_id = ? AND active = ?", orgID, true).
		Order("id ASC").
		Find(&fences).Error
	return fences, err
}

func (r *GeofenceRepository) ListByOrg(orgID uint) ([]models.Geofence, error) {
	var fences []models.Geofence
	err := r.db.Where("organization_id = ?", orgID).Order("id ASC").Find(&fences).Error
	return fences, err
}

// Deactivate soft-disables a geofence. Updating an already-inactive row is a
// no-op, which keeps the operation idempotent.
func (r *GeofenceRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Geofence{}).Where("id = ?", id).Update("active", false).Error
}

// OfficerIDs returns the officers linked to a geofence ordered by ascending
// officer ID.
func (r *GeofenceRepository) OfficerIDs(geofenceID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.GeofenceOfficer{}).
		Where("geofence_id = ?", geofenceID).
		Order("officer_id ASC").
		Pluck("officer_id", &ids).Error
	return ids, err
}

// ReplaceOfficers swaps the linked officer set atomically.
func (r *GeofenceRepository) ReplaceOfficers(geofenceID uint, officerIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("geofence_id = ?", geofenceID).Delete(&models.GeofenceOfficer{}).Error; err != nil {
			return err
		}
		for _, oid := range officerIDs {
			link := models.GeofenceOfficer{GeofenceID: geofenceID, OfficerID: oid}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
