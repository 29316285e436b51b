package handlers

import (
	"net/http"

	"gram-vidya/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var in service.CreateQuizInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	quiz, err := h.Service.CreateQuiz(c.Request.Context(), who, in)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

func (h *QuizHandler) ListByCourse(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "courseId")
	if !ok {
		return
	}
	quizzes, err := h.Service.ListByCourse(c.Request.Context(), who, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"count": len(quizzes), "quizzes": quizzes})
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	quiz, err := h.Service.GetQuiz(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"quiz": quiz})
}

type submitRequest struct {
	Answers map[string]int `json:"answers"`
}

func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "answers must map question indices to option indices")
		return
	}
	answers, err := service.ParseAnswers(req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	grade, err := h.Service.Submit(c.Request.Context(), who, id, answers)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, gin.H{
		"result": gin.H{
			"score":          grade.Score,
			"totalQuestions": grade.TotalQuestions,
			"percentage":     grade.Percentage,
			"passed":         grade.Passed,
		},
	})
}

func (h *QuizHandler) GetResults(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	report, err := h.Service.ListResults(c.Request.Context(), who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{
		"count":   len(report.Results),
		"results": report.Results,
		"summary": report.Summary,
	})
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteQuiz(c.Request.Context(), who, id); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"message": "Quiz deleted"})
}
