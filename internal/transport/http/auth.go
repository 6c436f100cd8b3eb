package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"keysmith/backend/internal/auth"
	"keysmith/backend/internal/middleware"
	"keysmith/backend/internal/monitoring"
	"keysmith/backend/internal/session"
)

// AuthHandler 管理员认证相关的 HTTP 处理器
type AuthHandler struct {
	auth     *auth.Service
	sessions *session.Manager
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authSvc *auth.Service, sessions *session.Manager, metrics *monitoring.Metrics, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		auth:     authSvc,
		sessions: sessions,
		metrics:  metrics,
		log:      log,
	}
}

// RegisterRequest 管理员注册请求
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register 管理员注册
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidParams)
		return
	}

	admin, err := h.auth.Register(auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			Conflict(c, errorMessage(err))
		case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrInvalidEmail):
			BadRequest(c, errorMessage(err))
		default:
			h.log.Error("failed to register admin", zap.Error(err))
			InternalError(c)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.AdminsRegistered.Inc()
	}
	h.log.Info("admin registered", zap.Int64("admin_id", admin.ID), zap.String("email", admin.Email))

	Created(c, "注册成功", gin.H{
		"id":    admin.ID,
		"name":  admin.Name,
		"email": admin.Email,
	})
}

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 管理员登录
//
// 成功时签发会话令牌，同时写入 session_token Cookie，
// 供浏览器与 API 客户端两种形态使用。
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidParams)
		return
	}

	admin, err := h.auth.Login(auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			BadRequest(c, errorMessage(err))
		case errors.Is(err, auth.ErrInvalidCredentials):
			if h.metrics != nil {
				h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
			}
			Unauthorized(c, errorMessage(err))
		default:
			h.log.Error("failed to log in admin", zap.Error(err))
			InternalError(c)
		}
		return
	}

	token, err := h.sessions.Login(c.Request.Context(), admin)
	if err != nil {
		h.log.Error("failed to create session", zap.Int64("admin_id", admin.ID), zap.Error(err))
		InternalError(c)
		return
	}

	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}
	h.log.Info("admin logged in", zap.Int64("admin_id", admin.ID))

	c.SetCookie(middleware.SessionCookieName, token, int(h.sessions.TTL().Seconds()), "/", "", false, true)

	Success(c, gin.H{
		"token": token,
		"admin": gin.H{
			"id":   admin.ID,
			"name": admin.Name,
		},
	})
}

// Logout 管理员登出，幂等
//
// 即使令牌无效或会话早已销毁也返回成功，
// 并清除会话 Cookie。
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.ExtractSessionToken(c)

	if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
		h.log.Error("failed to destroy session", zap.Error(err))
		InternalError(c)
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)

	SuccessWithMsg(c, "已退出登录", nil)
}

// CurrentAdmin 返回当前会话的管理员身份
// GET /current-admin
func (h *AuthHandler) CurrentAdmin(c *gin.Context) {
	adminID, ok := c.Get(middleware.CtxAdminID)
	if !ok {
		Unauthorized(c, MsgUnauthorized)
		return
	}
	adminName, _ := c.Get(middleware.CtxAdminName)

	Success(c, gin.H{
		"id":   adminID,
		"name": adminName,
	})
}
