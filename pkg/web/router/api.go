package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/prometheus/client_golang/prometheus"

	"user-portal/pkg/common/config"
	"user-portal/pkg/common/metrics"
	"user-portal/pkg/core/user/service"
	"user-portal/pkg/web/handler"
	"user-portal/pkg/web/middleware"
)

// Deps 路由依赖
type Deps struct {
	Config  *config.Config
	Users   *service.UserService
	Metrics *metrics.Metrics
	// Gatherer 为 nil 时不注册 /metrics
	Gatherer prometheus.Gatherer
}

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, deps Deps) {
	cfg := deps.Config
	cookies := middleware.NewCookies(cfg.Session)

	// 初始化Handler实例
	healthHandler := handler.NewHealthCheckHandler(deps.Users)
	authHandler := handler.NewAuthHandler(deps.Users, cookies)
	userHandler := handler.NewUserHandler(deps.Users, cookies)
	checkHandler := handler.NewCheckHandler(deps.Users)

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(deps.Metrics),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
	)

	// 基础接口组
	h.GET("/health", healthHandler.AdvancedHealthCheck)
	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		h.GET(cfg.Metrics.Path, handler.NewMetricsHandler(deps.Gatherer).Serve)
	}

	// 业务接口组
	apiGroup := h.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/exit", authHandler.Exit)
			authGroup.GET("/session", authHandler.Session)
		}

		checkGroup := apiGroup.Group("/check")
		{
			checkGroup.POST("/uuid", checkHandler.UUID)
			checkGroup.POST("/username", checkHandler.Username)
			checkGroup.POST("/email", checkHandler.Email)
			checkGroup.POST("/password", checkHandler.Password)
		}

		// 需要身份认证的接口
		userGroup := apiGroup.Group("/users", middleware.SessionMiddleware(deps.Users, cookies))
		{
			userGroup.GET("", userHandler.Me)
			userGroup.GET("/:id", userHandler.Get)
			userGroup.PUT("/username", userHandler.ChangeUsername)
			userGroup.PUT("/email", userHandler.ChangeEmail)
			userGroup.PUT("/password", userHandler.ChangePassword)
			userGroup.DELETE("", userHandler.Delete)
		}
	}
}
