package service

import (
	"context"
	"fmt"
	"time"

	"gram-vidya/internal/metrics"
	"gram-vidya/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationLimit is how many notifications a poll returns.
const NotificationLimit = 20

type NotificationFeed struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

type NotificationService struct {
	Store NotificationStore
	Now   func() time.Time
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{Store: store, Now: time.Now}
}

func (s *NotificationService) List(ctx context.Context, user primitive.ObjectID) (*NotificationFeed, error) {
	items, err := s.Store.FindLatest(ctx, user, NotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.Store.CountUnread(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}
	return &NotificationFeed{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead only touches notifications owned by user; anything else is not found.
func (s *NotificationService) MarkRead(ctx context.Context, user, id primitive.ObjectID) (*models.Notification, error) {
	n, err := s.Store.MarkRead(ctx, user, id)
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	if n == nil {
		return nil, notFound("Notification")
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, user, id primitive.ObjectID) error {
	deleted, err := s.Store.Delete(ctx, user, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if !deleted {
		return notFound("Notification")
	}
	return nil
}

// FanOut creates one unread notification per user in a single bulk write.
func (s *NotificationService) FanOut(ctx context.Context, users []primitive.ObjectID, message, link string) error {
	if len(users) == 0 {
		return nil
	}
	now := s.Now().UTC()
	batch := make([]models.Notification, 0, len(users))
	for _, u := range users {
		batch = append(batch, models.Notification{
			ID:        primitive.NewObjectID(),
			User:      u,
			Message:   message,
			Link:      link,
			CreatedAt: now,
		})
	}
	if err := s.Store.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("fan out %d notifications: %w", len(batch), err)
	}
	metrics.NotificationsCreated.Add(float64(len(batch)))
	return nil
}
