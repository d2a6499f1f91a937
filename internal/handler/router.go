package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"marketplace-service/internal/logging"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/service"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Listings       *service.ListingService
	Messages       *service.MessageService
	Objects        ObjectReader
	Bucket         string
	MaxUploadBytes int64
	JWTSecret      string
	Redis          *redis.Client
	RateLimitQPS   int
	Logger         *logging.Logger
}

// NewRouter wires every route under /api plus /healthz.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	r.MaxMultipartMemory = 8 << 20

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	NewListingHandler(d.Listings, d.MaxUploadBytes).RegisterRoutes(api)
	(&PhotoHandler{Objects: d.Objects, Bucket: d.Bucket}).RegisterRoutes(api)
	NewMessageHandler(d.Messages).RegisterRoutes(api,
		middleware.RateLimit(d.Redis, "messages", d.RateLimitQPS, d.Logger),
		middleware.JWTAuthMiddleware(d.JWTSecret, middleware.RoleAdmin),
	)
	return r
}
