package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SHILUNKA/edusaas-sub001/config"
	"github.com/SHILUNKA/edusaas-sub001/internal/api/handler"
	"github.com/SHILUNKA/edusaas-sub001/internal/api/middleware"
	"github.com/SHILUNKA/edusaas-sub001/pkg/jwt"
	"github.com/SHILUNKA/edusaas-sub001/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 排课与点名均为基地侧操作
			classes := authorized.Group("/classes", middleware.RequireBase())
			{
				classes.POST("/preview", h.Class.Preview)
				classes.POST("/batch", h.Class.Submit)
				classes.GET("/today", h.Class.ListToday)
				classes.GET("/:id/roster", h.Roster.GetRoster)
				classes.GET("/:id/roster/export", h.Roster.ExportRoster)
				classes.POST("/:id/enrollments/:enrollmentID/checkin", h.Roster.CheckIn)
			}

			// 提交流水
			submissions := authorized.Group("/submissions", middleware.RequireBase())
			{
				submissions.GET("", h.Class.ListSubmissions)
				submissions.GET("/:id/calendar", h.Class.ExportCalendar)
			}
		}
	}

	return r
}
