package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"sentra/config"
	"sentra/internal/domain"
	"sentra/internal/models"
	"sentra/internal/repository"
	"sentra/pkg/geo"
	"sentra/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Broadcaster pushes fresh track points to connected share viewers. The
// websocket hub implements it; tests pass nil.
type Broadcaster interface {
	BroadcastPoint(token string, point *models.LiveLocationTrackPoint)
}

// LocationSnapshot is what an unauthenticated viewer following a share link
// gets to see: session state and track history, nothing about the sharer
// beyond the session itself.
type LocationSnapshot struct {
	Token           string                          `json:"token"`
	Status          string                          `json:"status"`
	StartedAt       time.Time                       `json:"started_at"`
	LastBroadcastAt *time.Time                      `json:"last_broadcast_at,omitempty"`
	DistanceKm      float64                         `json:"distance_km"`
	Points          []models.LiveLocationTrackPoint `json:"points"`
}

func trackDistanceKm(points []models.LiveLocationTrackPoint) float64 {
	var km float64
	for i := 1; i < len(points); i++ {
		km += geo.HaversineKm(
			points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude,
		)
	}
	return km
}

// LiveShareManager owns the live-location session lifecycle:
// ACTIVE → STOPPED (terminal), with plan-based duration caps.
type LiveShareManager struct {
	db          *gorm.DB
	shares      *repository.ShareRepository
	cfg         config.LiveShareConfig
	broadcaster Broadcaster
	log         *logger.Logger
	now         func() time.Time
}

func NewLiveShareManager(db *gorm.DB, shares *repository.ShareRepository, cfg config.LiveShareConfig, broadcaster Broadcaster, log *logger.Logger) *LiveShareManager {
	return &LiveShareManager{
		db:          db,
		shares:      shares,
		cfg:         cfg,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// Start opens a session for the actor. A second active session for the same
// actor fails with ErrShareConflict: checked in the transaction and backed
// by the unique index on active_key, so two concurrent starts cannot both
// commit.
func (m *LiveShareManager) Start(actorID uint, actorKind, planType string) (*models.LiveLocationShare, error) {
	if !domain.ValidActorKind(actorKind) || actorID == 0 {
		return nil, domain.ErrActorRequired
	}
	if !domain.ValidPlan(planType) {
		planType = domain.PlanFree
	}

	share := &models.LiveLocationShare{
		Token:    newShareToken(),
		PlanType: planType,
		Status:   domain.ShareStatusActive,
	}
	if actorKind == domain.ActorKindOfficer {
		share.OfficerID = &actorID
	} else {
		share.UserID = &actorID
	}
	key := share.ActorKey()
	share.ActiveKey = &key

	err := m.db.Transaction(func(tx *gorm.DB) error {
		shares := m.shares.WithTx(tx)
		_, err := shares.ActiveByActorKey(key)
		if err == nil {
			return domain.ErrShareConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return shares.Create(share)
	})
	if err != nil {
		if errors.Is(err, domain.ErrShareConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrShareConflict
		}
		if errors.Is(err, domain.ErrActorRequired) {
			return nil, err
		}
		return nil, domain.WrapStorage(err)
	}
	return share, nil
}

// RecordPoint appends a track point to an active session. Timestamps come
// from the server clock; a caller-supplied timestamp is clamped into
// [latest point, server now] so recorded_at never decreases and never runs
// ahead of the server.
func (m *LiveShareManager) RecordPoint(shareID uint, lat, lng float64, at time.Time) (*models.LiveLocationTrackPoint, error) {
	var point *models.LiveLocationTrackPoint
	var token string
	err := m.db.Transaction(func(tx *gorm.DB) error {
		shares := m.shares.WithTx(tx)
		share, err := shares.GetByID(shareID)
		if err != nil {
			return err
		}
		if !share.IsActive() {
			return domain.ErrShareNotActive
		}

		now := m.now()
		recorded := at
		// future skew is clamped too, so one bad client timestamp cannot
		// drag every later honest point up to it
		if recorded.IsZero() || recorded.After(now) {
			recorded = now
		}
		last, err := shares.LastPoint(shareID)
		if err != nil {
			return err
		}
		if last != nil && recorded.Before(last.RecordedAt) {
			recorded = last.RecordedAt
		}

		point = &models.LiveLocationTrackPoint{
			ShareID:    shareID,
			Latitude:   lat,
			Longitude:  lng,
			RecordedAt: recorded,
		}
		if err := shares.AppendPoint(point); err != nil {
			return err
		}
		share.LastBroadcastAt = &now
		token = share.Token
		return shares.Save(share)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShareNotFound
		}
		if errors.Is(err, domain.ErrShareNotActive) {
			return nil, err
		}
		return nil, domain.WrapStorage(err)
	}
	if m.broadcaster != nil {
		m.broadcaster.BroadcastPoint(token, point)
	}
	return point, nil
}

// Stop transitions ACTIVE→STOPPED. Stopping an already-stopped session is a
// no-op: duplicate stop signals from unreliable clients are expected, so a
// mismatched reason only logs a warning instead of failing.
func (m *LiveShareManager) Stop(shareID uint, reason string) (*models.LiveLocationShare, error) {
	if !domain.ValidStopReason(reason) {
		reason = domain.StopReasonUser
	}
	var share *models.LiveLocationShare
	err := m.db.Transaction(func(tx *gorm.DB) error {
		shares := m.shares.WithTx(tx)
		s, err := shares.GetByID(shareID)
		if err != nil {
			return err
		}
		share = s
		if !s.IsActive() {
			if s.StopReason != nil && *s.StopReason != reason {
				m.log.WithFields(map[string]interface{}{
					"share_id":  s.ID,
					"stopped":   *s.StopReason,
					"requested": reason,
				}).Warn("duplicate stop with different reason ignored")
			}
			return nil
		}
		now := m.now()
		s.Status = domain.ShareStatusStopped
		s.StopReason = &reason
		s.StoppedAt = &now
		s.ActiveKey = nil
		return shares.Save(s)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShareNotFound
		}
		return nil, domain.WrapStorage(err)
	}
	return share, nil
}

// Expire is the periodic sweep: it stops ACTIVE sessions that outlived their
// plan cap (reason "limit") or the absolute cap (reason "expired"), and
// purges stopped sessions past the retention window. It is the only
// operation that scans multiple sessions.
func (m *LiveShareManager) Expire(now time.Time) (int, error) {
	active, err := m.shares.ListActive()
	if err != nil {
		return 0, domain.WrapStorage(err)
	}
	stopped := 0
	for i := range active {
		age := now.Sub(active[i].CreatedAt)
		reason := ""
		switch {
		case age > m.cfg.AbsoluteMaxDuration:
			reason = domain.StopReasonExpired
		case age > m.planCap(active[i].PlanType):
			reason = domain.StopReasonLimit
		default:
			continue
		}
		if _, err := m.Stop(active[i].ID, reason); err != nil {
			m.log.WithError(err).WithField("share_id", active[i].ID).Error("expiry stop failed")
			continue
		}
		stopped++
	}

	cutoff := now.Add(-m.cfg.RetentionWindow)
	if purged, err := m.shares.DeleteStoppedBefore(cutoff); err != nil {
		m.log.WithError(err).Error("retention purge failed")
	} else if purged > 0 {
		m.log.WithField("purged", purged).Info("purged stopped shares past retention")
	}
	return stopped, nil
}

func (m *LiveShareManager) planCap(plan string) time.Duration {
	if plan == domain.PlanPremium {
		return m.cfg.PremiumMaxDuration
	}
	return m.cfg.FreeMaxDuration
}

// ResolveByToken serves the public share link. Unknown tokens and stopped
// sessions past the retention window return the same ErrShareNotFound so the
// endpoint cannot be used as a token-existence oracle.
func (m *LiveShareManager) ResolveByToken(token string) (*LocationSnapshot, error) {
	share, err := m.shares.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShareNotFound
		}
		return nil, domain.WrapStorage(err)
	}
	if !share.IsActive() && share.StoppedAt != nil &&
		m.now().Sub(*share.StoppedAt) > m.cfg.RetentionWindow {
		return nil, domain.ErrShareNotFound
	}
	points, err := m.shares.Points(share.ID, 500)
	if err != nil {
		return nil, domain.WrapStorage(err)
	}
	return &LocationSnapshot{
		Token:           share.Token,
		Status:          share.Status,
		StartedAt:       share.CreatedAt,
		LastBroadcastAt: share.LastBroadcastAt,
		DistanceKm:      trackDistanceKm(points),
		Points:          points,
	}, nil
}

// Delete removes a session and its whole track history.
func (m *LiveShareManager) Delete(shareID uint) error {
	if err := m.shares.Delete(shareID); err != nil {
		return domain.WrapStorage(err)
	}
	return nil
}

// GetByID loads a session for owner-facing reads.
func (m *LiveShareManager) GetByID(shareID uint) (*models.LiveLocationShare, error) {
	share, err := m.shares.GetByID(shareID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShareNotFound
		}
		return nil, domain.WrapStorage(err)
	}
	return share, nil
}

// newShareToken builds an unguessable, globally unique share token: a v4
// UUID plus extra random bytes.
func newShareToken() string {
	suffix := make([]byte, 8)
	_, _ = rand.Read(suffix)
	return strings.ReplaceAll(uuid.NewString(), "-", "") + hex.EncodeToString(suffix)
}
