package handlers

import (
	"net/http"

	"gram-vidya/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Service *service.NotificationService
}

func NewNotificationHandler(s *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: s}
}

func (h *NotificationHandler) List(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	feed, err := h.Service.List(c.Request.Context(), who.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{
		"notifications": feed.Notifications,
		"unreadCount":   feed.UnreadCount,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := h.Service.MarkRead(c.Request.Context(), who.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"notification": n})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), who.ID, id); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"message": "Notification removed"})
}
