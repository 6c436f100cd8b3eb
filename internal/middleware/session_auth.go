package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"keysmith/backend/internal/session"
)

// 会话认证中间件写入上下文的键
const (
	CtxAdminID   = "adminID"
	CtxAdminName = "adminName"
)

// SessionCookieName 会话令牌 Cookie 名
const SessionCookieName = "session_token"

// SessionAuth 基于服务端会话的管理员认证中间件
type SessionAuth struct {
	sessions *session.Manager
	log      *zap.Logger
}

// NewSessionAuth 创建会话认证中间件
func NewSessionAuth(sessions *session.Manager, log *zap.Logger) *SessionAuth {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionAuth{
		sessions: sessions,
		log:      log,
	}
}

// RequireAdmin 要求有效的管理员会话
//
// 任何返回数据的仪表盘操作都必须挂载本中间件；
// 会话缺失或无效统一以 401 拒绝（访问拒绝，不是服务器错误），
// 会话存储故障则为 500。
func (sa *SessionAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractSessionToken(c)

		sess, err := sa.sessions.Current(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code": http.StatusUnauthorized,
					"msg":  "未授权访问",
				})
				return
			}

			sa.log.Error("session store failure", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code": http.StatusInternalServerError,
				"msg":  "服务器内部错误，请稍后重试",
			})
			return
		}

		c.Set(CtxAdminID, sess.AdminID)
		c.Set(CtxAdminName, sess.AdminName)

		c.Next()
	}
}

// ExtractSessionToken 从请求中提取会话令牌
//
// 优先 Authorization: Bearer 头，其次 session_token Cookie。
func ExtractSessionToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	token, err := c.Cookie(SessionCookieName)
	if err == nil && token != "" {
		return token
	}

	return ""
}
