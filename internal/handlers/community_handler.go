package handlers

import (
	"net/http"

	"gram-vidya/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommunityHandler struct {
	Service *service.CommunityService
}

func NewCommunityHandler(s *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{Service: s}
}

// ListPosts is public. ?course=<id> narrows the board to one course.
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	var course *primitive.ObjectID
	if raw := c.Query("course"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid course")
			return
		}
		course = &id
	}
	posts, err := h.Service.ListThreads(c.Request.Context(), course)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"posts": posts})
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in service.CreatePostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	post, err := h.Service.CreatePost(c.Request.Context(), who, in)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, gin.H{"post": post})
}

func (h *CommunityHandler) Reply(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.ReplyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	post, err := h.Service.Reply(c.Request.Context(), who, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, gin.H{"post": post})
}

func (h *CommunityHandler) ToggleLike(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	likes, err := h.Service.ToggleLike(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"likes": likes})
}

func (h *CommunityHandler) DeletePost(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeletePost(c.Request.Context(), who, id); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"message": "Post deleted"})
}
