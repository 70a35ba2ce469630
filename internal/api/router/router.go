package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SirOwss/MASARI/config"
	"github.com/SirOwss/MASARI/internal/api/handler"
	"github.com/SirOwss/MASARI/internal/api/middleware"
	"github.com/SirOwss/MASARI/pkg/jwt"
	"github.com/SirOwss/MASARI/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

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
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 参照表模块（维护限 admin）
			references := authorized.Group("/references")
			{
				references.GET("/timings", h.Reference.ListTimings)
				references.GET("/courses", h.Reference.ListCourses)
				references.POST("/timings", middleware.RoleAuth("admin"), h.Reference.ImportTimings)
				references.POST("/courses", middleware.RoleAuth("admin"), h.Reference.ImportCourses)
			}

			// 考表模块
			schedules := authorized.Group("/schedules")
			{
				schedules.POST("/generate", middleware.RoleAuth("admin", "operator"), h.Schedule.Generate)
				schedules.GET("/runs", h.Schedule.ListRuns)
				schedules.GET("/runs/:id/export", h.Schedule.DownloadExport)
			}
		}
	}

	return r
}
