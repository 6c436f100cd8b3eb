package health

import (
	"context"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"keysmith/backend/internal/session"
	"keysmith/backend/internal/storage"
)

// HealthChecker 健康检查器
type HealthChecker struct {
	health   healthcheck.Handler
	store    storage.Store
	sessions session.Store
	logger   *zap.Logger
}

// NewHealthChecker 创建健康检查器
//
// 检查项：数据库连接、会话存储连接。
func NewHealthChecker(store storage.Store, sessions session.Store, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health:   healthcheck.NewHandler(),
		store:    store,
		sessions: sessions,
		logger:   logger,
	}

	hc.health.AddLivenessCheck("database", func() error {
		return hc.store.Health()
	})

	hc.health.AddLivenessCheck("session-store", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return hc.sessions.Ping(ctx)
	})

	hc.health.AddReadinessCheck("database", func() error {
		return hc.store.Health()
	})

	return hc
}

// LiveHandler 返回存活检查处理器
func (hc *HealthChecker) LiveHandler() http.HandlerFunc {
	return hc.health.LiveEndpoint
}

// ReadyHandler 返回就绪检查处理器
func (hc *HealthChecker) ReadyHandler() http.HandlerFunc {
	return hc.health.ReadyEndpoint
}
