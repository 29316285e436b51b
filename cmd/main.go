package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gram-vidya/internal/config"
	mongodb "gram-vidya/internal/database/mongo"
	redisdb "gram-vidya/internal/database/redis"
	"gram-vidya/internal/event"
	"gram-vidya/internal/handlers"
	"gram-vidya/internal/middleware"
	"gram-vidya/internal/realtime"
	"gram-vidya/internal/repository"
	"gram-vidya/internal/service"
	"gram-vidya/pkg/discovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
)

type indexed interface {
	InitializeIndexes(ctx context.Context) error
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := config.Load()
	gin.SetMode(cfg.Server.GinMode)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	mongoClient, err := mongodb.Connect(rootCtx, cfg.MongoDB)
	if err != nil {
		glog.Fatalf("MongoDB: %v", err)
	}
	database := mongoClient.Database(cfg.MongoDB.Database)

	redisClient, err := redisdb.Connect(rootCtx, cfg.Redis)
	if err != nil {
		// Redis only backs the cache and the relay; run without it.
		glog.Warningf("Continuing without Redis: %v", err)
		redisClient = nil
	}

	publisher, err := event.NewEventPublisher(cfg.RabbitMQ, cfg.Server.ServiceName)
	if err != nil {
		glog.Warningf("Failed to initialize event publisher, events disabled: %v", err)
		publisher, _ = event.NewEventPublisher(config.RabbitMQConfig{}, cfg.Server.ServiceName)
	}

	// Repositories
	quizRepo := repository.NewQuizRepository(database)
	resultRepo := repository.NewResultRepository(database)
	progressRepo := repository.NewProgressRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	courseRepo := repository.NewCourseRepository(database)
	lessonRepo := repository.NewLessonRepository(database)
	userRepo := repository.NewUserRepository(database)
	postRepo := repository.NewPostRepository(database)
	reviewRepo := repository.NewReviewRepository(database)

	initIndexes(rootCtx, quizRepo, resultRepo, progressRepo, notificationRepo, postRepo, reviewRepo)

	// Services
	validator := service.NewValidator()
	notificationService := service.NewNotificationService(notificationRepo)
	quizService := service.NewQuizService(quizRepo, resultRepo, courseRepo, notificationService, nil, publisher, validator)
	if redisClient != nil {
		quizService.Cache = repository.NewQuizCache(redisClient, cfg.Redis.QuizTTL)
	}
	progressService := service.NewProgressService(progressRepo, lessonRepo, publisher, validator)
	analyticsService := service.NewAnalyticsService(courseRepo, lessonRepo, userRepo, progressRepo)
	courseService := service.NewCourseService(courseRepo, publisher)
	communityService := service.NewCommunityService(postRepo, userRepo, publisher, validator)
	reviewService := service.NewReviewService(reviewRepo, courseRepo, userRepo, publisher, validator)

	// Realtime
	var relay *realtime.RedisRelay
	var hub *realtime.Hub
	if redisClient != nil {
		relay = realtime.NewRedisRelay(redisClient, cfg.Chat.RelayChannel)
		hub = realtime.NewHub(cfg.Chat, relay)
	} else {
		hub = realtime.NewHub(cfg.Chat, nil)
	}
	hubCtx, stopHub := context.WithCancel(rootCtx)
	go hub.Run(hubCtx)
	if relay != nil {
		go func() {
			if err := relay.Run(hubCtx, hub); err != nil {
				glog.Errorf("Chat relay stopped: %v", err)
			}
		}()
	}

	// HTTP
	auth := middleware.NewAuth(cfg.Auth.JWTSecret)

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(middleware.LogFormatter))
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.SetupRoutes(r, auth, handlers.Handlers{
		Quiz:         handlers.NewQuizHandler(quizService),
		Progress:     handlers.NewProgressHandler(progressService),
		Analytics:    handlers.NewAnalyticsHandler(analyticsService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Course:       handlers.NewCourseHandler(courseService),
		Chat:         handlers.NewChatHandler(hub, auth, cfg.Chat.RequireAuth, cfg.Server.AllowOrigins),
		Community:    handlers.NewCommunityHandler(communityService),
		Review:       handlers.NewReviewHandler(reviewService),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var registry *discovery.ServiceRegistry
	if cfg.Consul.Address != "" {
		registry, err = discovery.NewServiceRegistry(cfg)
		if err != nil {
			glog.Warningf("Service discovery disabled: %v", err)
		} else if err := registry.Register(); err != nil {
			glog.Warningf("Failed to register with Consul: %v", err)
			registry = nil
		}
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		glog.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	glog.Info("Shutting down server...")

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			glog.Errorf("Error deregistering from service discovery: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		glog.Errorf("Error shutting down HTTP server: %v", err)
	}

	stopHub()

	if err := publisher.Close(); err != nil {
		glog.Errorf("Error closing event publisher: %v", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			glog.Errorf("Error closing Redis client: %v", err)
		}
	}
	mongodb.Disconnect(mongoClient)

	glog.Info("Server shutdown complete")
}

func initIndexes(ctx context.Context, repos ...indexed) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, repo := range repos {
		if err := repo.InitializeIndexes(ctx); err != nil {
			glog.Errorf("Failed to initialize indexes: %v", err)
		}
	}
}
