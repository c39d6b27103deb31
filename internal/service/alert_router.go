package service

import (
	"errors"

	"sentra/internal/domain"
	"sentra/internal/models"
	"sentra/internal/repository"
	"sentra/pkg/geo"
	"sentra/pkg/logger"

	"gorm.io/gorm"
)

// Notifier dispatches delivery (push + stored notification) when an alert is
// assigned. The router only calls; it does not own delivery.
type Notifier interface {
	NotifyAlertAssigned(officerID uint, alert *models.Alert)
}

// RoutingResult is the assignment the router computed for an alert.
type RoutingResult struct {
	Officer  *models.User
	Geofence *models.Geofence
}

type SubmitAlertInput struct {
	OrganizationID uint
	ReporterID     uint
	ReporterRole   string // USER | OFFICER
	Type           string
	Message        string
	Latitude       float64
	Longitude      float64
	TriggerShareID *uint
}

// AlertRouter assigns incoming alerts to a geofence and a responsible
// officer, persisting the alert in the same transaction.
type AlertRouter struct {
	db       *gorm.DB
	fences   *repository.GeofenceRepository
	users    *repository.UserRepository
	alerts   *repository.AlertRepository
	notifier Notifier
	log      *logger.Logger
}

func NewAlertRouter(db *gorm.DB, fences *repository.GeofenceRepository, users *repository.UserRepository, alerts *repository.AlertRepository, notifier Notifier, log *logger.Logger) *AlertRouter {
	return &AlertRouter{db: db, fences: fences, users: users, alerts: alerts, notifier: notifier, log: log}
}

// Submit persists a new alert with its routing assignment. When the
// organization has no active officer the alert is still persisted, flagged
// for manual review, and ErrNoEligibleOfficer is returned alongside it.
func (r *AlertRouter) Submit(in SubmitAlertInput) (*models.Alert, error) {
	if !domain.ValidAlertType(in.Type) {
		return nil, domain.ErrInvalidAlertType
	}
	if in.ReporterRole != domain.RoleUser && in.ReporterRole != domain.RoleOfficer {
		return nil, domain.ErrActorRequired
	}

	alert := &models.Alert{
		OrganizationID: in.OrganizationID,
		ReporterID:     in.ReporterID,
		CreatedByRole:  in.ReporterRole,
		Type:           in.Type,
		Message:        in.Message,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Status:         domain.AlertStatusPending,
		TriggerShareID: in.TriggerShareID,
	}

	var noOfficer bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result, err := r.route(tx, in.OrganizationID, geo.Point{Lat: in.Latitude, Lng: in.Longitude})
		if err != nil {
			if errors.Is(err, domain.ErrNoEligibleOfficer) {
				noOfficer = true
				alert.NeedsManualReview = true
			} else {
				return err
			}
		} else {
			alert.AssignedOfficerID = &result.Officer.ID
			if result.Geofence != nil {
				alert.AssignedGeofenceID = &result.Geofence.ID
			}
		}
		return r.alerts.WithTx(tx).Create(alert)
	})
	if err != nil {
		return nil, domain.WrapStorage(err)
	}

	if noOfficer {
		r.log.WithField("alert_id", alert.ID).Warn("alert has no eligible officer, flagged for manual review")
		return alert, domain.ErrNoEligibleOfficer
	}
	if r.notifier != nil && alert.AssignedOfficerID != nil {
		r.notifier.NotifyAlertAssigned(*alert.AssignedOfficerID, alert)
	}
	return alert, nil
}

// route computes the assignment inside tx. Geofence tie-break is smallest
// ID; officer tie-break is lowest ID among active officers. Alerts outside
// every fence fall back to the organization's lowest-ID active officer so no
// alert is ever invisible to the whole force.
func (r *AlertRouter) route(tx *gorm.DB, orgID uint, pt geo.Point) (*RoutingResult, error) {
	fences := r.fences.WithTx(tx)
	users := r.users.WithTx(tx)

	officers, err := users.ActiveOfficersByOrg(orgID)
	if err != nil {
		return nil, err
	}
	if len(officers) == 0 {
		return nil, domain.ErrNoEligibleOfficer
	}
	active := make(map[uint]*models.User, len(officers))
	for i := range officers {
		active[officers[i].ID] = &officers[i]
	}

	all, err := fences.ActiveByOrg(orgID)
	if err != nil {
		return nil, err
	}
	var matched *models.Geofence
	for i := range all {
		poly, err := all[i].Polygon()
		if err != nil {
			r.log.WithError(err).WithField("geofence_id", all[i].ID).Warn("skipping geofence with malformed vertices")
			continue
		}
		if poly.Contains(pt) {
			matched = &all[i] // ActiveByOrg orders by ID, first hit wins
			break
		}
	}

	if matched != nil {
		linked, err := fences.OfficerIDs(matched.ID)
		if err != nil {
			return nil, err
		}
		for _, oid := range linked { // ordered by officer ID
			if officer, ok := active[oid]; ok {
				return &RoutingResult{Officer: officer, Geofence: matched}, nil
			}
		}
		// fence has no active officer: keep the fence, fall through to the
		// org-wide fallback so the alert still surfaces
	}

	result := &RoutingResult{Officer: &officers[0], Geofence: matched}
	return result, nil
}

// Reassign explicitly moves an alert to another active officer in the same
// organization. This is the only path that overwrites an existing
// assignment. Alerts outside orgID are reported as not found.
func (r *AlertRouter) Reassign(orgID, alertID, officerID uint) (*models.Alert, error) {
	var alert *models.Alert
	err := r.db.Transaction(func(tx *gorm.DB) error {
		a, err := r.alerts.WithTx(tx).GetByID(alertID)
		if err != nil {
			return err
		}
		if a.OrganizationID != orgID {
			return gorm.ErrRecordNotFound
		}
		officer, err := r.users.WithTx(tx).GetByID(officerID)
		if err != nil {
			return err
		}
		if !officer.Eligible() || officer.OrganizationID != a.OrganizationID {
			return domain.ErrNoEligibleOfficer
		}
		a.AssignedOfficerID = &officer.ID
		a.NeedsManualReview = false
		alert = a
		return r.alerts.WithTx(tx).Save(a)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNoEligibleOfficer) {
			return nil, err
		}
		return nil, domain.WrapStorage(err)
	}
	if r.notifier != nil {
		r.notifier.NotifyAlertAssigned(*alert.AssignedOfficerID, alert)
	}
	return alert, nil
}

// Complete transitions pending→completed for an alert in orgID. Completing
// an already-completed alert is a no-op so duplicate resolutions from the
// dashboard are harmless.
func (r *AlertRouter) Complete(orgID, alertID uint) (*models.Alert, error) {
	var alert *models.Alert
	err := r.db.Transaction(func(tx *gorm.DB) error {
		a, err := r.alerts.WithTx(tx).GetByID(alertID)
		if err != nil {
			return err
		}
		if a.OrganizationID != orgID {
			return gorm.ErrRecordNotFound
		}
		alert = a
		if a.Status == domain.AlertStatusCompleted {
			return nil
		}
		a.Status = domain.AlertStatusCompleted
		return r.alerts.WithTx(tx).Save(a)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, domain.WrapStorage(err)
	}
	return alert, nil
}
