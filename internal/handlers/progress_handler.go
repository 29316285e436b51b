package handlers

import (
	"errors"
	"io"
	"net/http"

	"gram-vidya/internal/service"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	Service *service.ProgressService
}

func NewProgressHandler(s *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{Service: s}
}

func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	lessonID, ok := paramID(c, "lessonId")
	if !ok {
		return
	}
	var in service.UpdateProgressInput
	// An empty body keeps the stored status and watch time.
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	progress, err := h.Service.UpdateProgress(c.Request.Context(), who.ID, lessonID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"progress": progress})
}

func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	out, err := h.Service.CourseProgress(c.Request.Context(), who.ID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"progress": out.Progress, "stats": out.Stats})
}

func (h *ProgressHandler) MyProgress(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	rows, err := h.Service.MyProgress(c.Request.Context(), who.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"progress": rows})
}
