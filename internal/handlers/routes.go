package handlers

import (
	"net/http"

	"gram-vidya/internal/middleware"
	"gram-vidya/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Quiz         *QuizHandler
	Progress     *ProgressHandler
	Analytics    *AnalyticsHandler
	Notification *NotificationHandler
	Course       *CourseHandler
	Chat         *ChatHandler
	Community    *CommunityHandler
	Review       *ReviewHandler
}

// SetupRoutes registers every endpoint on r. Handlers left nil are skipped.
func SetupRoutes(r *gin.Engine, auth *middleware.Auth, h Handlers) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.Chat != nil {
		r.GET("/ws", h.Chat.Connect)
	}
	if h.Community != nil {
		r.GET("/api/community", h.Community.ListPosts)
	}
	if h.Review != nil {
		r.GET("/api/reviews/:courseId", h.Review.CourseReviews)
	}

	api := r.Group("/api", auth.Protect())
	staff := middleware.Authorize(models.RoleTeacher, models.RoleAdmin)

	if h.Quiz != nil {
		quizzes := api.Group("/quizzes")
		{
			quizzes.POST("", staff, h.Quiz.CreateQuiz)
			quizzes.GET("/course/:courseId", h.Quiz.ListByCourse)
			quizzes.GET("/:id", h.Quiz.GetQuiz)
			quizzes.POST("/:id/submit", h.Quiz.SubmitQuiz)
			quizzes.GET("/:id/results", staff, h.Quiz.GetResults)
			quizzes.DELETE("/:id", staff, h.Quiz.DeleteQuiz)
		}
	}

	if h.Progress != nil {
		progress := api.Group("/progress")
		{
			progress.POST("/lesson/:lessonId", h.Progress.UpdateProgress)
			progress.GET("/course/:courseId", h.Progress.CourseProgress)
			progress.GET("/my-progress", h.Progress.MyProgress)
		}
	}

	courses := api.Group("/courses")
	if h.Analytics != nil {
		courses.GET("/:courseId/analytics", staff, h.Analytics.CourseAnalytics)
		api.GET("/admin/analytics", middleware.Authorize(models.RoleAdmin), h.Analytics.SystemAnalytics)
	}
	if h.Course != nil {
		courses.POST("/:courseId/enroll", h.Course.Enroll)
	}

	if h.Community != nil {
		community := api.Group("/community")
		{
			community.POST("", h.Community.CreatePost)
			community.POST("/:id/reply", h.Community.Reply)
			community.POST("/:id/like", h.Community.ToggleLike)
			community.DELETE("/:id", h.Community.DeletePost)
		}
	}

	if h.Review != nil {
		api.POST("/reviews/:courseId", h.Review.AddReview)
		api.DELETE("/reviews/:id", h.Review.DeleteReview)
	}

	if h.Notification != nil {
		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.PUT("/:id/read", h.Notification.MarkRead)
			notifications.DELETE("/:id", h.Notification.Delete)
		}
	}
}
