package handlers

import (
	"net/http"

	"gram-vidya/internal/middleware"
	"gram-vidya/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

type ChatHandler struct {
	Hub         *realtime.Hub
	Auth        *middleware.Auth
	RequireAuth bool
	upgrader    *websocket.Upgrader
}

// NewChatHandler accepts websocket upgrades from the configured origins. An empty
// origin list allows any origin.
func NewChatHandler(hub *realtime.Hub, auth *middleware.Auth, requireAuth bool, allowOrigins []string) *ChatHandler {
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[o] = struct{}{}
	}
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
	return &ChatHandler{Hub: hub, Auth: auth, RequireAuth: requireAuth, upgrader: upgrader}
}

// Connect upgrades GET /ws. With auth required the bearer token comes in the
// "token" query parameter since browsers cannot set headers on websockets.
func (h *ChatHandler) Connect(c *gin.Context) {
	var userID string
	if token := c.Query("token"); token != "" {
		claims, err := h.Auth.ValidateToken(token)
		if err != nil {
			fail(c, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}
		userID = claims.ID
	} else if h.RequireAuth {
		fail(c, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	if err := h.Hub.ServeWS(h.upgrader, c.Writer, c.Request, userID); err != nil {
		glog.Warningf("Websocket upgrade failed: %v", err)
	}
}
