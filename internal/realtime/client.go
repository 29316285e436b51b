package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one websocket connection. rooms is only touched by the hub goroutine.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]struct{}
}

func newClient(h *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

// ServeWS upgrades the request and attaches the connection to the hub. userID is
// empty for anonymous connections.
func (h *Hub) ServeWS(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newClient(h, conn, userID)
	if !h.attach(c) {
		conn.Close()
		return nil
	}

	go c.writePump()
	go c.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				glog.V(1).Infof("Chat client %s read error: %v", c.id, err)
			}
			return
		}

		var in frame
		if err := json.Unmarshal(data, &in); err != nil {
			c.reply(encodeError("invalid frame"))
			continue
		}

		switch in.Event {
		case eventJoinRoom:
			room, err := roomFromJoin(in.Data)
			if err != nil {
				c.reply(encodeError(err.Error()))
				continue
			}
			c.hub.joinRoom(c, room)

		case eventSendMessage:
			room, err := roomFromMessage(in.Data)
			if err != nil {
				c.reply(encodeError(err.Error()))
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), c.hub.cfg.WriteWait)
			c.hub.Send(ctx, c, room, in.Data)
			cancel()

		default:
			c.reply(encodeError("unknown event " + in.Event))
		}
	}
}

func (c *Client) reply(msg []byte) {
	c.hub.direct(c, msg)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
