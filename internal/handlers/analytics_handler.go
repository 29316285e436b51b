package handlers

import (
	"net/http"

	"gram-vidya/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Service *service.AnalyticsService
}

func NewAnalyticsHandler(s *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: s}
}

func (h *AnalyticsHandler) CourseAnalytics(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	out, err := h.Service.CourseAnalytics(c.Request.Context(), who, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"analytics": out})
}

func (h *AnalyticsHandler) SystemAnalytics(c *gin.Context) {
	out, err := h.Service.SystemAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"analytics": out})
}
