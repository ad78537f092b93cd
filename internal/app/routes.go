package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luminpress/core/internal/middleware"
	"github.com/luminpress/core/internal/modules/article"
	"github.com/luminpress/core/internal/modules/translation"
	pkgredis "github.com/luminpress/core/internal/pkg/redis"
	"github.com/luminpress/core/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client, articleSvc *article.Service, translationSvc *translation.Service) {
	r := a.router
	authMW := middleware.Auth(a.cfg.APIToken)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "luminpress-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/luminpress/core",
	}

	api := r.Group("/api/v2")
	api.Use(middleware.OptionalAuth(a.cfg.APIToken))
	api.Use(middleware.RateLimit(rc.Raw()))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})
	api.GET("/health", a.health(rc))

	article.NewHandler(articleSvc).RegisterRoutes(api, authMW)
	translation.NewHandler(translationSvc).RegisterRoutes(api, authMW)
}

func (a *App) health(rc *pkgredis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{"database": "ok", "redis": "ok"}
		healthy := true

		if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			checks["database"] = "unreachable"
			healthy = false
		}
		if err := rc.Raw().Ping(c.Request.Context()).Err(); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"healthy": healthy,
			"checks":  checks,
			"cron":    a.sched.List(),
		})
	}
}
