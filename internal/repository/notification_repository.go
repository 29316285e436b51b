package repository

import (
	"context"
	"errors"

	"gram-vidya/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	Col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{Col: db.Collection("notifications")}
}

func (r *NotificationRepository) InitializeIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *NotificationRepository) InsertMany(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	docs := make([]interface{}, len(notifications))
	for i := range notifications {
		if notifications[i].ID.IsZero() {
			notifications[i].ID = primitive.NewObjectID()
		}
		docs[i] = notifications[i]
	}
	_, err := r.Col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

func (r *NotificationRepository) FindLatest(ctx context.Context, user primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := r.Col.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	notifications := []models.Notification{}
	for cur.Next(ctx) {
		var n models.Notification
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, cur.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, user primitive.ObjectID) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"user": user, "isRead": false})
}

// MarkRead returns nil, nil when the user owns no such notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, user, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := r.Col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user": user},
		bson.M{"$set": bson.M{"isRead": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, user, id primitive.ObjectID) (bool, error) {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id, "user": user})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
