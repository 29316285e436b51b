package handlers

import (
	"net/http"

	"gram-vidya/internal/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Service *service.ReviewService
}

func NewReviewHandler(s *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: s}
}

// CourseReviews is public.
func (h *ReviewHandler) CourseReviews(c *gin.Context) {
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	out, err := h.Service.CourseReviews(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{
		"count":   len(out.Reviews),
		"reviews": out.Reviews,
		"rating":  out.Rating,
	})
}

func (h *ReviewHandler) AddReview(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	var in service.AddReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	review, err := h.Service.AddReview(c.Request.Context(), who, courseID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, gin.H{"review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteReview(c.Request.Context(), who, id); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"message": "Review deleted"})
}
