package httptransport

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"keysmith/backend/internal/auth"
	"keysmith/backend/internal/config"
	"keysmith/backend/internal/middleware"
	"keysmith/backend/internal/monitoring"
	"keysmith/backend/internal/service"
	"keysmith/backend/internal/session"
)

// RouterDependencies 路由依赖
type RouterDependencies struct {
	Config   *config.Config
	Keys     *service.APIKeyService
	Auth     *auth.Service
	Sessions *session.Manager
	Metrics  *monitoring.Metrics // 可为 nil（测试环境）
	Logger   *zap.Logger
}

// NewRouter 创建并配置 HTTP 路由
func NewRouter(deps RouterDependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestLogger(log))
	r.Use(corsMiddleware(deps.Config.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(middleware.HTTPMetrics(deps.Metrics))
	}

	keyHandler := NewAPIKeyHandler(deps.Keys, deps.Metrics, log)
	authHandler := NewAuthHandler(deps.Auth, deps.Sessions, deps.Metrics, log)
	sessionAuth := middleware.NewSessionAuth(deps.Sessions, log)

	// 密钥与用户
	r.POST("/generate-key", keyHandler.GenerateKey)
	r.POST("/save-user", keyHandler.SaveUser)
	r.DELETE("/delete-user/:id", keyHandler.DeleteUser)
	r.POST("/validate-key", keyHandler.ValidateKey)

	// 管理员认证
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// 需要有效会话的路由
	authorized := r.Group("/")
	authorized.Use(sessionAuth.RequireAdmin())
	{
		authorized.GET("/current-admin", authHandler.CurrentAdmin)
		authorized.GET("/dashboard-data", keyHandler.DashboardData)
	}

	return r
}

// corsMiddleware 构建 CORS 中间件
//
// 允许所有来源时不能开启凭证共享，浏览器会拒绝
// Access-Control-Allow-Origin: * 与 credentials 的组合。
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
