package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-habit-board/internal/adapters/handler/http/middleware"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type RouterDependencies struct {
	BoardHandler *BoardHandler
	HabitHandler *HabitHandler
	Health       HealthChecker
	BackendName  string
	Redis        *redis.Client
	RateLimit    int
	Log          logrus.FieldLogger
	StartTime    time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Log))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	if deps.Redis != nil && deps.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, 1*time.Minute, deps.Log))
	}

	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		storage := "connected"
		code := http.StatusOK

		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Health.Ping(ctx); err != nil {
				deps.Log.WithError(err).Warn("health check failed")
				status, storage, code = "error", "unreachable", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":  status,
			"backend": deps.BackendName,
			"storage": storage,
			"uptime":  time.Since(deps.StartTime).String(),
		})
	})

	deps.BoardHandler.RegisterRoutes(router)

	apiV1 := router.Group("/api/v1")
	deps.HabitHandler.RegisterRoutes(apiV1)

	return router
}
