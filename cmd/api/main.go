package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aiki-site-backend/config"
	_ "aiki-site-backend/docs" // Important for Swagger
	v1 "aiki-site-backend/internal/delivery/http/v1"
	"aiki-site-backend/internal/domain"
	"aiki-site-backend/internal/presentation"
	"aiki-site-backend/internal/usecase"
	"aiki-site-backend/pkg/clock"
	"aiki-site-backend/pkg/logger"
	"aiki-site-backend/pkg/mailto"
	"aiki-site-backend/pkg/redis"
	"aiki-site-backend/pkg/tracking"
	"aiki-site-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Aiki Site API
// @version         1.0
// @description     Support form and event tracking backend for the Aiki website.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting aiki site backend", "port", cfg.Port, "env", cfg.Environment)
	gin.SetMode(cfg.GinMode)

	// 3. Setup Redis (optional, rate limiting falls back to memory)
	var redisClient *goredis.Client
	var redisCheck func(ctx context.Context) error
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	} else {
		redisClient = redis.Client()
		redisCheck = redis.HealthCheck
		defer redis.Close()
	}

	// 4. Setup Tracking
	tracker := tracking.New(cfg.ServiceName, cfg.Environment)
	defer tracker.Sync()

	// 5. Setup Validation
	knownSubject := func(code string) bool { return domain.SubjectCode(code).Known() }
	validate := validator.New()
	validation.RegisterValidators(validate, knownSubject)
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(engine, knownSubject)
	}

	// 6. Setup UseCases
	supportUC := usecase.NewSupportUsecase(usecase.SupportConfig{
		Recipient:      cfg.SupportEmailTo,
		HandoffDelay:   cfg.HandoffDelay,
		StrictSubjects: cfg.StrictSubjects,
	}, validate, mailto.NewNavigator(cfg.MaxMailtoLinkLength), tracker, clock.System())
	trackingUC := usecase.NewTrackingUsecase(tracker)
	healthUC := usecase.NewHealthUsecase(redisCheck)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		SupportUC:  supportUC,
		TrackingUC: trackingUC,
		HealthUC:   healthUC,
		NewPage: func(fields domain.SupportRequest) *presentation.Page {
			return presentation.NewPage(fields, presentation.WithSuccessTTL(cfg.SuccessMessageTTL))
		},
		Redis:  redisClient,
		Config: cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
