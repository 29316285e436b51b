package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type relayMessage struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room"`
	Data   json.RawMessage `json:"data"`
}

// RedisRelay fans chat messages out to the other instances over redis pub/sub,
// one channel per room (prefix + room).
type RedisRelay struct {
	client     *redis.Client
	prefix     string
	instanceID string
}

func NewRedisRelay(client *redis.Client, prefix string) *RedisRelay {
	return &RedisRelay{
		client:     client,
		prefix:     prefix,
		instanceID: uuid.NewString(),
	}
}

func (r *RedisRelay) Publish(ctx context.Context, room string, payload []byte) error {
	body, err := json.Marshal(relayMessage{Origin: r.instanceID, Room: room, Data: payload})
	if err != nil {
		return fmt.Errorf("encode relay message: %w", err)
	}
	return r.client.Publish(ctx, r.prefix+room, body).Err()
}

// Run subscribes to every room channel and hands messages from other instances to
// the hub. It returns when ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context, hub *Hub) error {
	sub := r.client.PSubscribe(ctx, r.prefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to chat relay: %w", err)
	}
	glog.Infof("Chat relay subscribed to %s* as %s", r.prefix, r.instanceID)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(hub, msg)
		}
	}
}

func (r *RedisRelay) handle(hub *Hub, msg *redis.Message) {
	var in relayMessage
	if err := json.Unmarshal([]byte(msg.Payload), &in); err != nil {
		glog.Warningf("Dropping malformed relay message on %s: %v", msg.Channel, err)
		return
	}
	if in.Origin == r.instanceID {
		return
	}
	room := in.Room
	if room == "" {
		room = strings.TrimPrefix(msg.Channel, r.prefix)
	}
	hub.DeliverRemote(room, in.Data)
}
