package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationListIsCappedAndCountsUnread(t *testing.T) {
	ctx := context.Background()
	store := &memNotificationStore{}
	svc := NewNotificationService(store)
	user, other := primitive.NewObjectID(), primitive.NewObjectID()

	for i := 0; i < 25; i++ {
		require.NoError(t, svc.FanOut(ctx, []primitive.ObjectID{user}, fmt.Sprintf("message %d", i), ""))
	}
	require.NoError(t, svc.FanOut(ctx, []primitive.ObjectID{other}, "not yours", ""))

	feed, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, feed.Notifications, NotificationLimit)
	assert.Equal(t, "message 24", feed.Notifications[0].Message)
	assert.Equal(t, int64(25), feed.UnreadCount)

	_, err = svc.MarkRead(ctx, user, feed.Notifications[0].ID)
	require.NoError(t, err)
	feed, err = svc.List(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(24), feed.UnreadCount)
	assert.True(t, feed.Notifications[0].IsRead)
}

func TestNotificationOwnerScoping(t *testing.T) {
	ctx := context.Background()
	store := &memNotificationStore{}
	svc := NewNotificationService(store)
	owner, intruder := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, svc.FanOut(ctx, []primitive.ObjectID{owner}, "quiz posted", "/course/1"))
	id := store.items[0].ID

	_, err := svc.MarkRead(ctx, intruder, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, store.items[0].IsRead)

	err = svc.Delete(ctx, intruder, id)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, owner, id))
	assert.Empty(t, store.items)

	_, err = svc.MarkRead(ctx, owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFanOutWithoutUsersWritesNothing(t *testing.T) {
	store := &memNotificationStore{}
	require.NoError(t, NewNotificationService(store).FanOut(context.Background(), nil, "x", ""))
	assert.Empty(t, store.items)
}
