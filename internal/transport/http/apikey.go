package httptransport

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"keysmith/backend/internal/monitoring"
	"keysmith/backend/internal/service"
)

// APIKeyHandler 密钥与用户相关的 HTTP 处理器
type APIKeyHandler struct {
	keys    *service.APIKeyService
	metrics *monitoring.Metrics
	log     *zap.Logger
}

// NewAPIKeyHandler 创建密钥处理器
func NewAPIKeyHandler(keys *service.APIKeyService, metrics *monitoring.Metrics, log *zap.Logger) *APIKeyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIKeyHandler{
		keys:    keys,
		metrics: metrics,
		log:     log,
	}
}

// GenerateKeyRequest 生成密钥请求
type GenerateKeyRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// GenerateKey 生成一把新密钥（不落库）
// POST /generate-key
func (h *APIKeyHandler) GenerateKey(c *gin.Context) {
	var req GenerateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidParams)
		return
	}

	key, err := h.keys.GenerateKey(req.Firstname, req.Lastname, req.Email)
	if err != nil {
		if msg := errorMessage(err); msg != "" {
			BadRequest(c, msg)
			return
		}
		h.log.Error("failed to generate api key", zap.Error(err))
		InternalError(c)
		return
	}

	if h.metrics != nil {
		h.metrics.KeysGenerated.Inc()
	}

	Success(c, gin.H{"apiKey": key})
}

// SaveUserRequest 保存用户请求
type SaveUserRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	APIKey    string `json:"api_key"`
}

// SaveUser 持久化密钥并创建用户
// POST /save-user
func (h *APIKeyHandler) SaveUser(c *gin.Context) {
	var req SaveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidParams)
		return
	}

	user, err := h.keys.SaveUser(service.SaveUserInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		APIKey:    req.APIKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateAPIKey):
			Conflict(c, errorMessage(err))
		case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrMissingAPIKey):
			BadRequest(c, errorMessage(err))
		default:
			h.log.Error("failed to save user", zap.Error(err))
			InternalError(c)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.UsersSaved.Inc()
	}
	h.log.Info("user saved", zap.Int64("user_id", user.ID), zap.String("email", user.Email))

	Created(c, "用户创建成功", gin.H{"id": user.ID})
}

// DeleteUser 删除用户及其密钥
// DELETE /delete-user/:id
func (h *APIKeyHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, MsgInvalidParams)
		return
	}

	if err := h.keys.DeleteUser(id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			NotFound(c, errorMessage(err))
			return
		}
		h.log.Error("failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		InternalError(c)
		return
	}

	if h.metrics != nil {
		h.metrics.UsersDeleted.Inc()
	}
	h.log.Info("user deleted", zap.Int64("user_id", id))

	Success(c, nil)
}

// ValidateKeyRequest 校验密钥请求
type ValidateKeyRequest struct {
	APIKey string `json:"api_key"`
}

// ValidateKey 校验密钥是否可用
// POST /validate-key
func (h *APIKeyHandler) ValidateKey(c *gin.Context) {
	var req ValidateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidParams)
		return
	}

	result, err := h.keys.ValidateKey(req.APIKey)
	if err != nil {
		h.log.Error("failed to validate api key", zap.Error(err))
		InternalError(c)
		return
	}

	if h.metrics != nil {
		label := "invalid"
		if result.Valid {
			label = "valid"
		}
		h.metrics.KeysValidated.WithLabelValues(label).Inc()
	}

	Success(c, result)
}

// DashboardData 仪表盘数据：全部用户及其密钥元数据
// GET /dashboard-data
func (h *APIKeyHandler) DashboardData(c *gin.Context) {
	rows, err := h.keys.Dashboard()
	if err != nil {
		h.log.Error("failed to load dashboard data", zap.Error(err))
		InternalError(c)
		return
	}

	Success(c, gin.H{"users": rows})
}
