package repository

import (
	"sentra/internal/domain"
	"sentra/internal/models"

	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) WithTx(tx *gorm.DB) *AlertRepository {
	return &AlertRepository{db: tx}
}

func (r *AlertRepository) Create(a *models.Alert) error {
	return r.db.Create(a).Error
}

func (r *AlertRepository) GetByID(id uint) (*models.Alert, error) {
	var a models.Alert
	err := r.db.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AlertRepository) Save(a *models.Alert) error {
	return r.db.Save(a).Error
}

// AssignedToOfficer lists an officer's open alerts, newest first.
func (r *AlertRepository) AssignedToOfficer(officerID uint, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	q := r.db.Where("assigned_officer_id = ?", officerID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&alerts).Error
	return alerts, err
}

// NeedsManualReview lists unassigned alerts flagged for operator resolution.
func (r *AlertRepository) NeedsManualReview(orgID uint, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	q := r.db.
		Where("organization_id = ? AND needs_manual_review = ? AND status = ?", orgID, true, domain.AlertStatusPending).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&alerts).Error
	return alerts, err
}

func (r *AlertRepository) UpdatePhotoURL(alertID uint, url string) error {
	return r.db.Model(&models.Alert{}).Where("id = ?", alertID).Update("photo_url", url).Error
}
