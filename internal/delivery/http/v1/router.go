package v1

import (
	"net/http"
	"time"

	"aiki-site-backend/config"
	"aiki-site-backend/internal/delivery/http/middleware"
	"aiki-site-backend/internal/delivery/http/response"
	"aiki-site-backend/internal/domain"
	"aiki-site-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	SupportUC  domain.SupportUsecase
	TrackingUC domain.TrackingUsecase
	HealthUC   usecase.HealthUsecase
	NewPage    PageFactory
	Redis      *goredis.Client // nil uses in-memory rate limiting
	Config     *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window), deps.Redis))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", deps.HealthUC.Check(c.Request.Context()))
	})

	// Public routes
	supportLimit := middleware.RateLimitMiddleware(middleware.SupportRateLimitConfig(cfg.RateLimitSupportThreshold, window), deps.Redis)
	NewSupportHandler(v1, deps.SupportUC, deps.NewPage, supportLimit)
	NewTrackingHandler(v1, deps.TrackingUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
