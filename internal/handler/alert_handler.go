package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sentra/internal/domain"
	"sentra/internal/middleware"
	"sentra/internal/models"
	"sentra/internal/repository"
	"sentra/internal/service"
	"sentra/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AlertHandler struct {
	router    *service.AlertRouter
	alertRepo *repository.AlertRepository
	auditRepo *repository.AuditLogRepository
	cloud     cloudinary.Client
}

func NewAlertHandler(router *service.AlertRouter, alertRepo *repository.AlertRepository, auditRepo *repository.AuditLogRepository, cloud cloudinary.Client) *AlertHandler {
	return &AlertHandler{router: router, alertRepo: alertRepo, auditRepo: auditRepo, cloud: cloud}
}

// Submit handles POST /alerts: persist + route synchronously.
func (h *AlertHandler) Submit(c *gin.Context) {
	reporterID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	if role == domain.RoleAdmin {
		role = domain.RoleOfficer
	}
	// pointer coordinates so a legitimate 0 (equator, prime meridian) is
	// not rejected as a missing field
	var req struct {
		Type           string   `json:"type" binding:"required"`
		Message        string   `json:"message"`
		Latitude       *float64 `json:"latitude" binding:"required"`
		Longitude      *float64 `json:"longitude" binding:"required"`
		TriggerShareID *uint    `json:"trigger_share_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alert, err := h.router.Submit(service.SubmitAlertInput{
		OrganizationID: middleware.GetOrgID(c),
		ReporterID:     reporterID,
		ReporterRole:   role,
		Type:           req.Type,
		Message:        req.Message,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		TriggerShareID: req.TriggerShareID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoEligibleOfficer):
			// alert persisted but unassigned; operator must resolve
			c.JSON(http.StatusAccepted, gin.H{"alert": alert, "warning": "no eligible officer, flagged for manual review"})
		case errors.Is(err, domain.ErrInvalidAlertType), errors.Is(err, domain.ErrActorRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "alert submission failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"alert": alert})
}

// Assigned handles GET /alerts/assigned — the officer dashboard feed.
func (h *AlertHandler) Assigned(c *gin.Context) {
	officerID := middleware.GetUserID(c)
	alerts, err := h.alertRepo.AssignedToOfficer(officerID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// Unassigned handles GET /alerts/unassigned — the manual-review queue.
func (h *AlertHandler) Unassigned(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	alerts, err := h.alertRepo.NeedsManualReview(orgID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// Complete handles POST /alerts/:id/complete.
func (h *AlertHandler) Complete(c *gin.Context) {
	alertID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	alert, err := h.router.Complete(middleware.GetOrgID(c), uint(alertID))
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, domain.ErrStorageUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "could not complete alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// Reassign handles POST /alerts/:id/reassign (admin), audited.
func (h *AlertHandler) Reassign(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	alertID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		OfficerID uint `json:"officer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alert, err := h.router.Reassign(middleware.GetOrgID(c), uint(alertID), req.OfficerID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoEligibleOfficer):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "officer is not active"})
		case errors.Is(err, domain.ErrStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "alert or officer not found"})
		}
		return
	}
	if h.auditRepo != nil {
		_ = h.auditRepo.Create(&models.AuditLog{
			UserID:     &adminID,
			Action:     "alert_reassign",
			Resource:   "alert",
			ResourceID: itoa(alert.ID),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Metadata:   `{"officer_id":` + itoa(req.OfficerID) + `}`,
		})
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// UploadPhoto handles POST /alerts/:id/photo — evidence attached after the
// SOS went out.
func (h *AlertHandler) UploadPhoto(c *gin.Context) {
	userID := middleware.GetUserID(c)
	alertID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	alert, err := h.alertRepo.GetByID(uint(alertID))
	if err != nil || alert.OrganizationID != middleware.GetOrgID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	if alert.ReporterID != userID && middleware.GetRole(c) == domain.RoleUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your alert"})
		return
	}
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads not configured"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	folder := "sentra/alerts/" + itoa(alert.ID)
	publicID := "evidence_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	url, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	if err := h.alertRepo.UpdatePhotoURL(alert.ID, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save photo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
