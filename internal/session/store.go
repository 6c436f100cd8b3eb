// Package session 管理管理员的服务端会话。
//
// 会话载荷保存在服务端会话存储中（Redis 或内存），
// 对外发放的令牌只是指向会话的签名凭据；
// 销毁会话即刻使令牌失效，不依赖令牌自身到期。
package session

import (
	"context"
	"errors"
	"time"

	"keysmith/backend/internal/domain"
)

// ErrSessionNotFound 会话不存在（未创建、已销毁或已过期）
var ErrSessionNotFound = errors.New("session not found")

// Store 会话存储接口
type Store interface {
	// Create 写入会话载荷，到期后由存储自动清理
	Create(ctx context.Context, sess *domain.Session, ttl time.Duration) error
	// Get 按会话标识读取载荷，缺失时返回 ErrSessionNotFound
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Destroy 销毁会话；销毁不存在的会话不是错误
	Destroy(ctx context.Context, id string) error
	// Ping 检查存储可用性
	Ping(ctx context.Context) error
	// Close 释放底层资源
	Close() error
}
