package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gram-vidya/internal/models"

	"github.com/golang/glog"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuizCache keeps serialized quizzes in redis. Quizzes never change after creation,
// so the only invalidation is on delete. A nil client turns every call into a miss.
type QuizCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewQuizCache(client *redis.Client, ttl time.Duration) *QuizCache {
	return &QuizCache{client: client, ttl: ttl}
}

func quizKey(id primitive.ObjectID) string {
	return "quiz:" + id.Hex()
}

func (c *QuizCache) Get(ctx context.Context, id primitive.ObjectID) (*models.Quiz, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, quizKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			glog.Warningf("quiz cache get %s: %v", id.Hex(), err)
		}
		return nil, false
	}
	var quiz models.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		glog.Warningf("quiz cache decode %s: %v", id.Hex(), err)
		return nil, false
	}
	return &quiz, true
}

func (c *QuizCache) Set(ctx context.Context, quiz *models.Quiz) {
	if c == nil || c.client == nil || quiz == nil {
		return
	}
	raw, err := json.Marshal(quiz)
	if err != nil {
		glog.Warningf("quiz cache encode %s: %v", quiz.ID.Hex(), err)
		return
	}
	if err := c.client.Set(ctx, quizKey(quiz.ID), raw, c.ttl).Err(); err != nil {
		glog.Warningf("quiz cache set %s: %v", quiz.ID.Hex(), err)
	}
}

func (c *QuizCache) Invalidate(ctx context.Context, id primitive.ObjectID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, quizKey(id)).Err(); err != nil {
		glog.Warningf("quiz cache invalidate %s: %v", id.Hex(), err)
	}
}
