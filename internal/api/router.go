package api

import (
	"net/http"

	"cdr.dev/slog/v3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/forgeheat/internal/handler"
	"github.com/jengzang/forgeheat/internal/middleware"
	"github.com/jengzang/forgeheat/internal/service"
)

// Deps 路由依赖
type Deps struct {
	Logger        slog.Logger
	Contributions *service.ContributionService
	Limiter       *middleware.RateLimiter // nil 时不限流
	Gatherer      prometheus.Gatherer     // nil 时不暴露 /metrics
	JWTSecret     string
}

// SetupRouter 设置路由
func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.Logger))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "forgeheat is running",
		})
	})

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	contributions := handler.NewContributionHandler(d.Contributions)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(d.Limiter), middleware.Auth(d.JWTSecret))
	{
		api.POST("/heatmap", contributions.GetHeatmap)
		api.POST("/stats", contributions.GetStats)
		api.DELETE("/cache/:uid", contributions.InvalidateCache)
		api.GET("/providers", contributions.ListProviders)
	}

	return r
}
