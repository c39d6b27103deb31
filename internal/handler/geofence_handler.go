package handler

import (
	"errors"
	"net/http"
	"strconv"

	"sentra/internal/domain"
	"sentra/internal/middleware"
	"sentra/internal/models"
	"sentra/internal/repository"
	"sentra/internal/service"
	"sentra/pkg/geo"

	"github.com/gin-gonic/gin"
)

type GeofenceHandler struct {
	index     *service.GeofenceIndex
	fenceRepo *repository.GeofenceRepository
	auditRepo *repository.AuditLogRepository
}

func NewGeofenceHandler(index *service.GeofenceIndex, fenceRepo *repository.GeofenceRepository, auditRepo *repository.AuditLogRepository) *GeofenceHandler {
	return &GeofenceHandler{index: index, fenceRepo: fenceRepo, auditRepo: auditRepo}
}

// Create handles POST /geofences (admin).
func (h *GeofenceHandler) Create(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	orgID := middleware.GetOrgID(c)
	var req struct {
		Name     string      `json:"name" binding:"required"`
		Vertices geo.Polygon `json:"vertices" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fence, err := h.index.Register(orgID, adminID, req.Name, req.Vertices)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPolygon):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create geofence"})
		}
		return
	}
	if h.auditRepo != nil {
		_ = h.auditRepo.Create(&models.AuditLog{
			UserID:     &adminID,
			Action:     "geofence_create",
			Resource:   "geofence",
			ResourceID: itoa(fence.ID),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
	}
	c.JSON(http.StatusCreated, gin.H{"geofence": fence})
}

// List handles GET /geofences.
func (h *GeofenceHandler) List(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	fences, err := h.fenceRepo.ListByOrg(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load geofences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"geofences": fences})
}

// Deactivate handles DELETE /geofences/:id. Idempotent.
func (h *GeofenceHandler) Deactivate(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	fence, err := h.fenceRepo.GetByID(uint(id))
	if err != nil || fence.OrganizationID != middleware.GetOrgID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
		return
	}
	if err := h.index.Deactivate(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not deactivate geofence"})
		return
	}
	if h.auditRepo != nil {
		_ = h.auditRepo.Create(&models.AuditLog{
			UserID:     &adminID,
			Action:     "geofence_deactivate",
			Resource:   "geofence",
			ResourceID: c.Param("id"),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetOfficers handles PUT /geofences/:id/officers (admin).
func (h *GeofenceHandler) SetOfficers(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		OfficerIDs []uint `json:"officer_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fence, err := h.fenceRepo.GetByID(uint(id))
	if err != nil || fence.OrganizationID != middleware.GetOrgID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
		return
	}
	if err := h.fenceRepo.ReplaceOfficers(uint(id), req.OfficerIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update officers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
