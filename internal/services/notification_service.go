package services

import (
	"errors"
	"fmt"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/EveryDayApps/LinkLock-sub001/internal/logger"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService stores in-app notifications and pushes security events
// to configured external services.
type NotificationService struct {
	db         *gorm.DB
	notifyURLs []string
}

func NewNotificationService(db *gorm.DB, notifyURLs []string) *NotificationService {
	return &NotificationService{db: db, notifyURLs: notifyURLs}
}

// Create stores an in-app notification.
func (s *NotificationService) Create(nType models.NotificationType, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		Type:    nType,
		Title:   title,
		Message: message,
		Read:    false,
	}
	result := s.db.Create(notification)
	return notification, result.Error
}

// List returns notifications, newest first.
func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.db.Order("created_at desc")
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(id uint) error {
	result := s.db.Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every notification as read.
func (s *NotificationService) MarkAllRead() error {
	return s.db.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

// Delete removes one notification.
func (s *NotificationService) Delete(id uint) error {
	result := s.db.Delete(&models.Notification{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// SendExternal pushes a message to every configured shoutrrr URL. Failures
// are logged, not propagated; a broken webhook must not break the policy
// path.
func (s *NotificationService) SendExternal(title, message string) {
	for _, url := range s.notifyURLs {
		if err := shoutrrr.Send(url, fmt.Sprintf("%s: %s", title, message)); err != nil {
			logger.Log().WithError(err).Warn("external notification failed")
		}
	}
}

// Notify stores an in-app notification and pushes it externally.
func (s *NotificationService) Notify(nType models.NotificationType, title, message string) {
	if _, err := s.Create(nType, title, message); err != nil {
		logger.Log().WithError(err).Warn("store notification failed")
	}
	s.SendExternal(title, message)
}
