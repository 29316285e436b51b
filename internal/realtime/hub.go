package realtime

import (
	"context"

	"gram-vidya/internal/config"
	"gram-vidya/internal/metrics"

	"github.com/golang/glog"
)

// Relay forwards room traffic to other instances of the service.
type Relay interface {
	Publish(ctx context.Context, room string, payload []byte) error
}

type outbound struct {
	room    string
	payload []byte
	from    *Client // nil for messages that came in through the relay
	to      *Client // set for frames addressed to a single client
}

type membership struct {
	client *Client
	room   string
}

type sizeQuery struct {
	room  string
	reply chan int
}

// Hub owns every room and connection. All membership changes and deliveries happen
// on the Run goroutine; other goroutines talk to it through channels.
type Hub struct {
	cfg   config.ChatConfig
	relay Relay

	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan membership
	broadcast  chan outbound
	sizes      chan sizeQuery
	done       chan struct{}
}

func NewHub(cfg config.ChatConfig, relay Relay) *Hub {
	return &Hub{
		cfg:        cfg,
		relay:      relay,
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		broadcast:  make(chan outbound, 256),
		sizes:      make(chan sizeQuery),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			glog.Info("Chat hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.addToRoom(c, h.cfg.DefaultRoom)
			metrics.ChatConnections.Inc()
			glog.V(2).Infof("Chat client %s connected (user %q)", c.id, c.userID)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				glog.V(2).Infof("Chat client %s disconnected", c.id)
			}

		case m := <-h.join:
			if _, ok := h.clients[m.client]; ok {
				h.addToRoom(m.client, m.room)
			}

		case msg := <-h.broadcast:
			h.deliver(msg)

		case q := <-h.sizes:
			q.reply <- len(h.rooms[q.room])
		}
	}
}

func (h *Hub) addToRoom(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// deliver is fire-and-forget: a member whose buffer is full is disconnected rather
// than allowed to stall the room.
func (h *Hub) deliver(msg outbound) {
	if msg.to != nil {
		if _, ok := h.clients[msg.to]; ok {
			h.push(msg.to, msg.payload)
		}
		return
	}

	frame, err := encodeFrame(eventReceiveMessage, msg.payload)
	if err != nil {
		glog.Errorf("Failed to encode chat frame: %v", err)
		return
	}
	for c := range h.rooms[msg.room] {
		if c == msg.from {
			continue
		}
		h.push(c, frame)
	}
}

func (h *Hub) push(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		metrics.ChatDropped.Inc()
		glog.Warningf("Chat client %s is not keeping up, disconnecting", c.id)
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.clients, c)
	close(c.send)
	metrics.ChatConnections.Dec()
}

// Send delivers payload to every other local member of room and forwards it
// through the relay when one is configured.
func (h *Hub) Send(ctx context.Context, from *Client, room string, payload []byte) {
	select {
	case h.broadcast <- outbound{room: room, payload: payload, from: from}:
	case <-h.done:
		return
	}
	metrics.ChatMessages.WithLabelValues("local").Inc()

	if h.relay != nil {
		if err := h.relay.Publish(ctx, room, payload); err != nil {
			glog.Warningf("Failed to relay chat message for room %s: %v", room, err)
		}
	}
}

// DeliverRemote hands a message received from another instance to every local member.
func (h *Hub) DeliverRemote(room string, payload []byte) {
	select {
	case h.broadcast <- outbound{room: room, payload: payload}:
		metrics.ChatMessages.WithLabelValues("relay").Inc()
	case <-h.done:
	}
}

// RoomSize reports the number of local members of room, or -1 once the hub has stopped.
func (h *Hub) RoomSize(room string) int {
	q := sizeQuery{room: room, reply: make(chan int, 1)}
	select {
	case h.sizes <- q:
		return <-q.reply
	case <-h.done:
		return -1
	}
}

// direct queues an already encoded frame for a single client.
func (h *Hub) direct(c *Client, frame []byte) {
	select {
	case h.broadcast <- outbound{payload: frame, to: c}:
	case <-h.done:
	}
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) joinRoom(c *Client, room string) {
	select {
	case h.join <- membership{client: c, room: room}:
	case <-h.done:
	}
}
