package service

import (
	"sentra/internal/domain"
	"sentra/internal/models"
	"sentra/internal/repository"
	"sentra/pkg/geo"
	"sentra/pkg/logger"
)

// GeofenceIndex answers point-in-region queries over an organization's
// active geofences and owns geofence registration rules.
type GeofenceIndex struct {
	fences *repository.GeofenceRepository
	log    *logger.Logger
}

func NewGeofenceIndex(fences *repository.GeofenceRepository, log *logger.Logger) *GeofenceIndex {
	return &GeofenceIndex{fences: fences, log: log}
}

// Register validates and persists a new geofence. CreatedByID is set here,
// once, and no update path touches it again.
func (s *GeofenceIndex) Register(orgID, createdBy uint, name string, polygon geo.Polygon) (*models.Geofence, error) {
	if !polygon.Valid() {
		return nil, domain.ErrInvalidPolygon
	}
	fence := &models.Geofence{
		OrganizationID: orgID,
		Name:           name,
		Active:         true,
		CreatedByID:    createdBy,
	}
	if err := fence.SetPolygon(polygon); err != nil {
		return nil, domain.ErrInvalidPolygon
	}
	if err := s.fences.Create(fence); err != nil {
		return nil, domain.WrapStorage(err)
	}
	return fence, nil
}

// Contains returns every active geofence in the organization whose polygon
// contains the point, ordered by ascending ID. Boundary points count as
// inside (pkg/geo policy).
func (s *GeofenceIndex) Contains(orgID uint, pt geo.Point) ([]models.Geofence, error) {
	fences, err := s.fences.ActiveByOrg(orgID)
	if err != nil {
		return nil, domain.WrapStorage(err)
	}
	var matches []models.Geofence
	for _, f := range fences {
		poly, err := f.Polygon()
		if err != nil {
			// unreadable vertex data should never route alerts
			s.log.WithError(err).WithField("geofence_id", f.ID).Warn("skipping geofence with malformed vertices")
			continue
		}
		if poly.Contains(pt) {
			matches = append(matches, f)
		}
	}
	return matches, nil
}

// Deactivate soft-disables a geofence; repeated calls are no-ops.
func (s *GeofenceIndex) Deactivate(id uint) error {
	if err := s.fences.Deactivate(id); err != nil {
		return domain.WrapStorage(err)
	}
	return nil
}
