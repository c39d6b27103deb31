package repository

import (
	"time"

	"sentra/internal/domain"
	"sentra/internal/models"

	"gorm.io/gorm"
)

type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) WithTx(tx *gorm.DB) *ShareRepository {
	return &ShareRepository{db: tx}
}

func (r *ShareRepository) Create(s *models.LiveLocationShare) error {
	return r.db.Create(s).Error
}

func (r *ShareRepository) Save(s *models.LiveLocationShare) error {
	return r.db.Save(s).Error
}

func (r *ShareRepository) GetByID(id uint) (*models.LiveLocationShare, error) {
	var s models.LiveLocationShare
	err := r.db.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShareRepository) GetByToken(token string) (*models.LiveLocationShare, error) {
	var s models.LiveLocationShare
	err := r.db.Where("token = ?", token).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ActiveByActorKey finds the actor's ACTIVE session, if any.
func (r *ShareRepository) ActiveByActorKey(key string) (*models.LiveLocationShare, error) {
	var s models.LiveLocationShare
	err := r.db.Where("active_key = ?", key).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActive returns all ACTIVE sessions; only the expiry sweep scans
// multiple sessions.
func (r *ShareRepository) ListActive() ([]models.LiveLocationShare, error) {
	var shares []models.LiveLocationShare
	err := r.db.Where("status = ?", domain.ShareStatusActive).Find(&shares).Error
	return shares, err
}

func (r *ShareRepository) AppendPoint(p *models.LiveLocationTrackPoint) error {
	return r.db.Create(p).Error
}

// LastPoint returns the most recent track point for a share, or nil when the
// share has none yet.
func (r *ShareRepository) LastPoint(shareID uint) (*models.LiveLocationTrackPoint, error) {
	var p models.LiveLocationTrackPoint
	err := r.db.
		Where("share_id = ?", shareID).
		Order("recorded_at DESC, id DESC").
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Points returns a share's track history in recorded order.
func (r *ShareRepository) Points(shareID uint, limit int) ([]models.LiveLocationTrackPoint, error) {
	var pts []models.LiveLocationTrackPoint
	q := r.db.Where("share_id = ?", shareID).Order("recorded_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&pts).Error
	return pts, err
}

// Delete removes a share and its track points. The FK is declared
// ON DELETE CASCADE as well; the explicit delete keeps the no-orphans
// guarantee on drivers that ship with foreign keys disabled.
func (r *ShareRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("share_id = ?", id).Delete(&models.LiveLocationTrackPoint{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.LiveLocationShare{}, id).Error
	})
}

// DeleteStoppedBefore purges stopped shares whose session ended before the
// cutoff (retention window), track points included.
func (r *ShareRepository) DeleteStoppedBefore(cutoff time.Time) (int64, error) {
	var purged int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.LiveLocationShare{}).
			Where("status = ? AND stopped_at < ?", domain.ShareStatusStopped, cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("share_id IN ?", ids).Delete(&models.LiveLocationTrackPoint{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.LiveLocationShare{}, ids)
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}
