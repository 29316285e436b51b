package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quiz grading
	QuizzesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gramvidya_quizzes_created_total",
			Help: "Total number of quizzes created",
		},
	)

	QuizSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramvidya_quiz_submissions_total",
			Help: "Total number of graded quiz submissions",
		},
		[]string{"passed"},
	)

	QuizCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramvidya_quiz_cache_lookups_total",
			Help: "Quiz cache lookups by outcome",
		},
		[]string{"result"}, // hit/miss
	)

	// Progress
	ProgressUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramvidya_progress_updates_total",
			Help: "Total number of lesson progress upserts",
		},
		[]string{"status"},
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gramvidya_notifications_created_total",
			Help: "Total number of notifications written",
		},
	)

	// Community
	CommunityPosts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramvidya_community_posts_total",
			Help: "Discussion board posts written",
		},
		[]string{"kind"}, // post/reply
	)

	ReviewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gramvidya_reviews_created_total",
			Help: "Total number of course reviews written",
		},
	)

	// Realtime chat
	ChatConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gramvidya_chat_connections_current",
			Help: "Current number of open chat websockets",
		},
	)

	ChatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramvidya_chat_messages_total",
			Help: "Chat messages handled by origin",
		},
		[]string{"origin"}, // local/relay
	)

	ChatDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gramvidya_chat_slow_clients_dropped_total",
			Help: "Clients disconnected because their send buffer was full",
		},
	)

	// HTTP
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gramvidya_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
