package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artisenpaiii/liftlog/config"
	"github.com/artisenpaiii/liftlog/internal/api/handler"
	"github.com/artisenpaiii/liftlog/internal/api/middleware"
	"github.com/artisenpaiii/liftlog/pkg/jwt"
	"github.com/artisenpaiii/liftlog/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时关闭限流与 Token 黑名单检查
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 避免 nil *redis.Client 被包装成非 nil 接口
	var (
		limiter   middleware.RateLimiter
		blacklist middleware.TokenBlacklist
	)
	if rdb != nil {
		limiter = rdb
		blacklist = rdb
	}

	api := r.Group("/api")
	{
		// 认证模块（无需认证，按 IP 限流）
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit(limiter, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, cfg.Auth.Cookie.Name))
		{
			authorized.GET("/auth/profile", h.Auth.Profile)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 训练计划
			programs := authorized.Group("/programs")
			{
				programs.POST("/new", h.Program.Create)
				programs.GET("", h.Program.List)
				programs.GET("/:id", h.Program.Get)
				programs.PATCH("/:id", h.Program.Rename)
				programs.DELETE("/:id", h.Program.Delete)
				programs.GET("/:id/export.xlsx", h.Program.ExportXLSX)
				programs.GET("/:id/calendar.ics", h.Program.ExportICS)
			}

			// 训练阶段
			blocks := authorized.Group("/blocks")
			{
				blocks.POST("/new", h.Block.Create)
				blocks.PATCH("/order", h.Block.Reorder)
				blocks.PATCH("/:id", h.Block.Rename)
				blocks.DELETE("/:id", h.Block.Delete)
			}

			// 训练周
			weeks := authorized.Group("/weeks")
			{
				weeks.POST("/new", h.Week.Create)
				weeks.DELETE("/:id", h.Week.Delete)
			}

			// 训练日与表格
			days := authorized.Group("/days")
			{
				days.POST("/new", h.Day.Create)
				days.PUT("", h.Day.Update)
				days.DELETE("/:id", h.Day.Delete)

				days.POST("/column", h.Table.AddColumn)
				days.PUT("/column", h.Table.RenameColumn)
				days.PATCH("/column/order", h.Table.ReorderColumn)
				days.DELETE("/column/:id", h.Table.DeleteColumn)

				days.POST("/row", h.Table.AddRow)
				days.PATCH("/row/order", h.Table.ReorderRow)
				days.DELETE("/row/:id", h.Table.DeleteRow)

				days.PUT("/cell", h.Table.UpdateCell)
				days.PUT("/cell/upsert", h.Table.UpsertCell)
			}
		}
	}

	return r
}
