package handlers

import (
	"net/http"

	"gram-vidya/internal/service"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	Service *service.CourseService
}

func NewCourseHandler(s *service.CourseService) *CourseHandler {
	return &CourseHandler{Service: s}
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	if err := h.Service.Enroll(c.Request.Context(), who, courseID); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"message": "Enrolled successfully"})
}
