package service

import (
	"context"
	"encoding/json"
	"fmt"

	"sentra/internal/models"
	"sentra/internal/repository"
	"sentra/pkg/logger"
)

// NotificationService stores notifications and pushes them via FCM. It
// implements the router's Notifier interface.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
	log      *logger.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService, log *logger.Logger) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm, log: log}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	s.sendPush(userID, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(userID uint, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	if err := s.fcm.Send(context.Background(), u.FCMToken, title, body, data); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("push delivery failed")
	}
}

// NotifyAlertAssigned tells an officer a new alert landed on their desk.
func (s *NotificationService) NotifyAlertAssigned(officerID uint, alert *models.Alert) {
	title := "New alert assigned"
	body := fmt.Sprintf("%s alert #%d", alert.Type, alert.ID)
	if alert.Message != "" {
		body = body + ": " + alert.Message
	}
	if err := s.Notify(officerID, "ALERT_ASSIGNED", title, body, map[string]interface{}{
		"alert_id":   alert.ID,
		"alert_type": alert.Type,
		"latitude":   alert.Latitude,
		"longitude":  alert.Longitude,
	}); err != nil {
		s.log.WithError(err).WithField("officer_id", officerID).Error("failed to store alert notification")
	}
}
