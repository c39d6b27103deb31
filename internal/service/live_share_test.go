package service

import (
	"testing"
	"time"

	"sentra/config"
	"sentra/internal/domain"
	"sentra/internal/models"
	"sentra/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testShareConfig() config.LiveShareConfig {
	return config.LiveShareConfig{
		FreeMaxDuration:     time.Hour,
		PremiumMaxDuration:  8 * time.Hour,
		AbsoluteMaxDuration: 24 * time.Hour,
		RetentionWindow:     24 * time.Hour,
		SweepInterval:       time.Minute,
	}
}

func newTestManager(t *testing.T, db *gorm.DB) *LiveShareManager {
	t.Helper()
	return NewLiveShareManager(db, repository.NewShareRepository(db), testShareConfig(), nil, testLogger())
}

func TestStartGeneratesUniqueTokens(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	s1, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)
	s2, err := m.Start(2, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	assert.NotEmpty(t, s1.Token)
	assert.NotEqual(t, s1.Token, s2.Token)
	assert.Equal(t, domain.ShareStatusActive, s1.Status)
	assert.Equal(t, domain.PlanFree, s1.PlanType)
}

func TestStartSecondSessionConflicts(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	_, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	_, err = m.Start(1, domain.ActorKindUser, domain.PlanFree)
	assert.ErrorIs(t, err, domain.ErrShareConflict)

	// a different actor kind with the same numeric ID is a different actor
	_, err = m.Start(1, domain.ActorKindOfficer, domain.PlanFree)
	assert.NoError(t, err)
}

func TestStartAfterStopSucceeds(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	s, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)
	_, err = m.Stop(s.ID, domain.StopReasonUser)
	require.NoError(t, err)

	_, err = m.Start(1, domain.ActorKindUser, domain.PlanFree)
	assert.NoError(t, err)
}

func TestStartRequiresActor(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	_, err := m.Start(0, domain.ActorKindUser, domain.PlanFree)
	assert.ErrorIs(t, err, domain.ErrActorRequired)
	_, err = m.Start(1, "ROBOT", domain.PlanFree)
	assert.ErrorIs(t, err, domain.ErrActorRequired)
}

func TestRecordPointMonotonicTimestamps(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)
	s, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	t1 := time.Now().Add(-time.Minute)
	p1, err := m.RecordPoint(s.ID, 1.0, 2.0, t1)
	require.NoError(t, err)
	assert.True(t, p1.RecordedAt.Equal(t1))

	// client clock regression gets clamped to the previous point
	p2, err := m.RecordPoint(s.ID, 1.1, 2.1, t1.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, p2.RecordedAt.Before(p1.RecordedAt))
	assert.WithinDuration(t, p1.RecordedAt, p2.RecordedAt, time.Second)

	// server-assigned timestamp when caller supplies none
	p3, err := m.RecordPoint(s.ID, 1.2, 2.2, time.Time{})
	require.NoError(t, err)
	assert.False(t, p3.RecordedAt.Before(p2.RecordedAt))

	share, err := m.GetByID(s.ID)
	require.NoError(t, err)
	require.NotNil(t, share.LastBroadcastAt)
}

func TestRecordPointClampsFutureTimestamps(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)
	s, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	// a timestamp running ahead of the server clock is pulled back to it
	p1, err := m.RecordPoint(s.ID, 1.0, 2.0, base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, p1.RecordedAt.Equal(base))

	// the next honest point is not dragged up by the earlier bad one
	m.now = func() time.Time { return base.Add(2 * time.Second) }
	p2, err := m.RecordPoint(s.ID, 1.1, 2.1, base.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, p2.RecordedAt.Equal(base.Add(time.Second)))
}

func TestRecordPointAfterStopFails(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)
	s, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)
	_, err = m.Stop(s.ID, domain.StopReasonUser)
	require.NoError(t, err)

	_, err = m.RecordPoint(s.ID, 1.0, 2.0, time.Time{})
	assert.ErrorIs(t, err, domain.ErrShareNotActive)
}

func TestStopIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)
	s, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	first, err := m.Stop(s.ID, domain.StopReasonUser)
	require.NoError(t, err)
	require.NotNil(t, first.StopReason)
	assert.Equal(t, domain.StopReasonUser, *first.StopReason)

	second, err := m.Stop(s.ID, domain.StopReasonUser)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusStopped, second.Status)
	assert.Equal(t, domain.StopReasonUser, *second.StopReason)

	// duplicate stop with a different reason is a warned no-op, not an error
	third, err := m.Stop(s.ID, domain.StopReasonExpired)
	require.NoError(t, err)
	assert.Equal(t, domain.StopReasonUser, *third.StopReason)
}

func TestExpireStopsOverLimitSessions(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	free, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)
	premium, err := m.Start(2, domain.ActorKindUser, domain.PlanPremium)
	require.NoError(t, err)
	fresh, err := m.Start(3, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	// age the first two past the free cap; only the free session exceeds it
	started := time.Now().Add(-2 * time.Hour)
	// UpdateColumn skips the BeforeSave hook, which would reject a column
	// update made through a zero-valued model (no actor set).
	require.NoError(t, db.Model(&models.LiveLocationShare{}).Where("id IN ?", []uint{free.ID, premium.ID}).UpdateColumn("created_at", started).Error)

	stopped, err := m.Expire(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stopped)

	got, err := m.GetByID(free.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusStopped, got.Status)
	assert.Equal(t, domain.StopReasonLimit, *got.StopReason)

	got, err = m.GetByID(premium.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusActive, got.Status)

	got, err = m.GetByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusActive, got.Status)
}

func TestExpireUsesExpiredReasonPastAbsoluteCap(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	s, err := m.Start(1, domain.ActorKindUser, domain.PlanPremium)
	require.NoError(t, err)
	started := time.Now().Add(-25 * time.Hour)
	require.NoError(t, db.Model(&models.LiveLocationShare{}).Where("id = ?", s.ID).UpdateColumn("created_at", started).Error)

	stopped, err := m.Expire(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stopped)

	got, err := m.GetByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StopReasonExpired, *got.StopReason)
}

func TestResolveByTokenHidesRetiredSessions(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	s, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)
	_, err = m.RecordPoint(s.ID, 1.0, 2.0, time.Time{})
	require.NoError(t, err)
	_, err = m.RecordPoint(s.ID, 1.01, 2.0, time.Time{})
	require.NoError(t, err)

	snap, err := m.ResolveByToken(s.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusActive, snap.Status)
	require.Len(t, snap.Points, 2)
	assert.InDelta(t, 1.11, snap.DistanceKm, 0.05)

	// unknown token
	_, err = m.ResolveByToken("no-such-token")
	assert.ErrorIs(t, err, domain.ErrShareNotFound)

	// recently stopped still resolves
	_, err = m.Stop(s.ID, domain.StopReasonUser)
	require.NoError(t, err)
	snap, err = m.ResolveByToken(s.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusStopped, snap.Status)

	// stopped beyond the retention window looks exactly like a missing token
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&models.LiveLocationShare{}).Where("id = ?", s.ID).UpdateColumn("stopped_at", old).Error)
	_, err = m.ResolveByToken(s.Token)
	assert.ErrorIs(t, err, domain.ErrShareNotFound)
}

func TestExpirePurgesPastRetention(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	s, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)
	_, err = m.RecordPoint(s.ID, 1.0, 2.0, time.Time{})
	require.NoError(t, err)
	_, err = m.Stop(s.ID, domain.StopReasonUser)
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&models.LiveLocationShare{}).Where("id = ?", s.ID).UpdateColumn("stopped_at", old).Error)

	_, err = m.Expire(time.Now())
	require.NoError(t, err)

	var shares, points int64
	require.NoError(t, db.Model(&models.LiveLocationShare{}).Count(&shares).Error)
	require.NoError(t, db.Model(&models.LiveLocationTrackPoint{}).Count(&points).Error)
	assert.EqualValues(t, 0, shares)
	assert.EqualValues(t, 0, points)
}

func TestDeleteRemovesTrackPoints(t *testing.T) {
	db := newTestDB(t)
	m := newTestManager(t, db)

	s, err := m.Start(1, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = m.RecordPoint(s.ID, float64(i), float64(i), time.Time{})
		require.NoError(t, err)
	}

	require.NoError(t, m.Delete(s.ID))

	var points int64
	require.NoError(t, db.Model(&models.LiveLocationTrackPoint{}).Count(&points).Error)
	assert.EqualValues(t, 0, points) // no orphans
}
