package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"sentra/internal/domain"
	"sentra/internal/middleware"
	"sentra/internal/models"
	"sentra/internal/repository"
	"sentra/internal/service"

	"github.com/gin-gonic/gin"
)

type ShareHandler struct {
	manager  *service.LiveShareManager
	userRepo *repository.UserRepository
}

func NewShareHandler(manager *service.LiveShareManager, userRepo *repository.UserRepository) *ShareHandler {
	return &ShareHandler{manager: manager, userRepo: userRepo}
}

// Start handles POST /shares.
func (h *ShareHandler) Start(c *gin.Context) {
	actorID := middleware.GetUserID(c)
	actorKind := domain.ActorKindUser
	if middleware.GetRole(c) == domain.RoleOfficer {
		actorKind = domain.ActorKindOfficer
	}
	var req struct {
		PlanType string `json:"plan_type"`
	}
	_ = c.ShouldBindJSON(&req) // body optional; empty plan falls back to free
	share, err := h.manager.Start(actorID, actorKind, req.PlanType)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShareConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "an active share already exists, stop it first"})
		case errors.Is(err, domain.ErrActorRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start share"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"share": share, "token": share.Token})
}

// ownsShare reports whether the caller may mutate the share. Admins may
// mutate any share whose actor belongs to their organization.
func (h *ShareHandler) ownsShare(c *gin.Context, shareID uint) bool {
	share, err := h.manager.GetByID(shareID)
	if err != nil {
		return false
	}
	callerID := middleware.GetUserID(c)
	switch middleware.GetRole(c) {
	case domain.RoleAdmin:
		return h.actorOrg(share) == middleware.GetOrgID(c)
	case domain.RoleOfficer:
		return share.OfficerID != nil && *share.OfficerID == callerID
	default:
		return share.UserID != nil && *share.UserID == callerID
	}
}

// actorOrg resolves the organization of the sharing actor, 0 when unknown.
func (h *ShareHandler) actorOrg(share *models.LiveLocationShare) uint {
	var actorID uint
	if share.UserID != nil {
		actorID = *share.UserID
	} else if share.OfficerID != nil {
		actorID = *share.OfficerID
	}
	u, err := h.userRepo.GetByID(actorID)
	if err != nil {
		return 0
	}
	return u.OrganizationID
}

// PostLocation handles POST /shares/:id/location.
func (h *ShareHandler) PostLocation(c *gin.Context) {
	shareID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if !h.ownsShare(c, uint(shareID)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		return
	}
	// pointer coordinates so a legitimate 0 (equator, prime meridian) is
	// not rejected as a missing field
	var req struct {
		Latitude   *float64   `json:"latitude" binding:"required"`
		Longitude  *float64   `json:"longitude" binding:"required"`
		RecordedAt *time.Time `json:"recorded_at"` // optional client timestamp, clamped server-side
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var at time.Time
	if req.RecordedAt != nil {
		at = *req.RecordedAt
	}
	point, err := h.manager.RecordPoint(uint(shareID), *req.Latitude, *req.Longitude, at)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShareNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		case errors.Is(err, domain.ErrShareNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "share is not active"})
		case errors.Is(err, domain.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record location"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"point": point})
}

// Stop handles POST /shares/:id/stop.
func (h *ShareHandler) Stop(c *gin.Context) {
	shareID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if !h.ownsShare(c, uint(shareID)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	share, err := h.manager.Stop(uint(shareID), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShareNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		case errors.Is(err, domain.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not stop share"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"share": share})
}

// Delete handles DELETE /shares/:id. Removes the session and its whole
// track history.
func (h *ShareHandler) Delete(c *gin.Context) {
	shareID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if !h.ownsShare(c, uint(shareID)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		return
	}
	if err := h.manager.Delete(uint(shareID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete share"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// View handles GET /shared/:token — the public share link, no auth.
func (h *ShareHandler) View(c *gin.Context) {
	snapshot, err := h.manager.ResolveByToken(c.Param("token"))
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
			return
		}
		// unknown token and retired session intentionally look the same
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
