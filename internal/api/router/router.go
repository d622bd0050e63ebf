package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gangnaeng/backend/config"
	"gangnaeng/backend/internal/api/handler"
	"gangnaeng/backend/internal/api/middleware"
	"gangnaeng/backend/pkg/jwt"
	"gangnaeng/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：黑名单检查与限流随之降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

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

	generateLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window, logger)

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 课程目录：所有人可读，管理员可写
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.ListCourses)
			courses.GET("/:id", h.Course.GetCourse)
			courses.POST("", middleware.RoleAuth("admin"), h.Course.CreateCourse)
			courses.PUT("/:id", middleware.RoleAuth("admin"), h.Course.UpdateCourse)
			courses.DELETE("/:id", middleware.RoleAuth("admin"), h.Course.DeleteCourse)
		}

		// 课表规划会话
		plannerGroup := v1.Group("/planner")
		{
			plannerGroup.GET("/session", h.Planner.GetSession)
			plannerGroup.DELETE("/session", h.Planner.Reset)
			plannerGroup.POST("/parse", h.Planner.Parse)
			plannerGroup.POST("/generate", generateLimit, h.Planner.Generate)
			plannerGroup.POST("/generate/stream", generateLimit, h.Planner.GenerateStream)
			plannerGroup.PUT("/filters", h.Planner.ApplyFilters)
			plannerGroup.GET("/schedules/:id/grid", h.Planner.GetGrid)
			plannerGroup.GET("/schedules/:id/export", h.Export.ExportPlanned)
		}

		// 收藏课表
		saved := v1.Group("/saved-schedules")
		{
			saved.GET("", h.SavedSchedule.ListSaved)
			saved.POST("", h.SavedSchedule.SaveSchedule)
			saved.POST("/import", h.SavedSchedule.ImportICS)
			saved.GET("/:id", h.SavedSchedule.GetSaved)
			saved.GET("/:id/grid", h.SavedSchedule.GetGrid)
			saved.GET("/:id/export", h.Export.ExportSaved)
			saved.DELETE("/:id", h.SavedSchedule.DeleteSaved)
		}
	}

	return r
}
