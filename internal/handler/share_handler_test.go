package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"sentra/config"
	"sentra/internal/domain"
	"sentra/internal/models"
	"sentra/internal/repository"
	"sentra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newShareFixture(t *testing.T, db *gorm.DB) (*ShareHandler, *service.LiveShareManager) {
	t.Helper()
	cfg := config.LiveShareConfig{
		FreeMaxDuration:     time.Hour,
		PremiumMaxDuration:  8 * time.Hour,
		AbsoluteMaxDuration: 24 * time.Hour,
		RetentionWindow:     24 * time.Hour,
		SweepInterval:       time.Minute,
	}
	manager := service.NewLiveShareManager(db, repository.NewShareRepository(db), cfg, nil, testLogger())
	return NewShareHandler(manager, repository.NewUserRepository(db)), manager
}

func shareIDParam(c *gin.Context, id uint) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(uint64(id), 10)}}
}

func TestPostLocationAcceptsZeroCoordinates(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db, "acme")
	user := seedUser(t, db, org.ID, "ana", domain.RoleUser)
	h, manager := newShareFixture(t, db)

	share, err := manager.Start(user.ID, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := authedContext(w, user.ID, org.ID, domain.RoleUser)
	c.Request = jsonRequest(http.MethodPost, `{"latitude":0,"longitude":0}`)
	shareIDParam(c, share.ID)

	h.PostLocation(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var points int64
	require.NoError(t, db.Model(&models.LiveLocationTrackPoint{}).Count(&points).Error)
	assert.EqualValues(t, 1, points)
}

func TestPostLocationRejectsMissingCoordinates(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db, "acme")
	user := seedUser(t, db, org.ID, "ana", domain.RoleUser)
	h, manager := newShareFixture(t, db)

	share, err := manager.Start(user.ID, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := authedContext(w, user.ID, org.ID, domain.RoleUser)
	c.Request = jsonRequest(http.MethodPost, `{"latitude":1.5}`)
	shareIDParam(c, share.ID)

	h.PostLocation(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStopRejectsNonOwner(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db, "acme")
	owner := seedUser(t, db, org.ID, "ana", domain.RoleUser)
	stranger := seedUser(t, db, org.ID, "bob", domain.RoleUser)
	h, manager := newShareFixture(t, db)

	share, err := manager.Start(owner.ID, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := authedContext(w, stranger.ID, org.ID, domain.RoleUser)
	c.Request = jsonRequest(http.MethodPost, `{}`)
	shareIDParam(c, share.ID)

	h.Stop(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	got, err := manager.GetByID(share.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusActive, got.Status)
}

func TestAdminCannotStopShareOfAnotherOrg(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db, "acme")
	owner := seedUser(t, db, org.ID, "ana", domain.RoleUser)
	rival := seedOrg(t, db, "rival")
	admin := seedUser(t, db, rival.ID, "admin", domain.RoleAdmin)
	h, manager := newShareFixture(t, db)

	share, err := manager.Start(owner.ID, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := authedContext(w, admin.ID, rival.ID, domain.RoleAdmin)
	c.Request = jsonRequest(http.MethodPost, `{}`)
	shareIDParam(c, share.ID)

	h.Stop(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	got, err := manager.GetByID(share.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusActive, got.Status)
}

func TestAdminOfSameOrgCanStopShare(t *testing.T) {
	db := newTestDB(t)
	org := seedOrg(t, db, "acme")
	owner := seedUser(t, db, org.ID, "ana", domain.RoleUser)
	admin := seedUser(t, db, org.ID, "admin", domain.RoleAdmin)
	h, manager := newShareFixture(t, db)

	share, err := manager.Start(owner.ID, domain.ActorKindUser, domain.PlanFree)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c := authedContext(w, admin.ID, org.ID, domain.RoleAdmin)
	c.Request = jsonRequest(http.MethodPost, `{"reason":"user"}`)
	shareIDParam(c, share.ID)

	h.Stop(c)
	assert.Equal(t, http.StatusOK, w.Code)

	got, err := manager.GetByID(share.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusStopped, got.Status)
}
