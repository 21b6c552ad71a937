package service

import (
	"context"
	"log/slog"

	"github.com/socialmagic/content-engine/internal/models"
	"github.com/socialmagic/content-engine/internal/repository"
)

// NotificationService is a fire-and-forget sink; failures are logged and
// never escalate into the calling job.
type NotificationService interface {
	Notify(ctx context.Context, userID int64, notificationType, title, message string, data map[string]any)
	List(ctx context.Context, userID int64, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
}

type notificationService struct {
	nr repository.NotificationRepository
}

func NewNotificationService(nr repository.NotificationRepository) NotificationService {
	return &notificationService{nr: nr}
}

func (s *notificationService) Notify(ctx context.Context, userID int64, notificationType, title, message string, data map[string]any) {
	_, err := s.nr.Create(ctx, &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Data:    data,
	})
	if err != nil {
		slog.Info(err.Error())
	}
}

func (s *notificationService) List(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.nr.ListByUser(ctx, userID, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.nr.MarkRead(ctx, notificationID, userID)
}
