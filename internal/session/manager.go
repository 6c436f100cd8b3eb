package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"keysmith/backend/internal/domain"
)

// ErrUnauthorized 会话缺失、无效或已过期
var ErrUnauthorized = errors.New("invalid or expired session")

// Manager 会话管理器
//
// 状态机（按令牌）：匿名 --登录--> 已认证 --登出/过期--> 匿名。
// Login 只应在凭证验证成功后调用；令牌与载荷双重校验，
// 无法凭未认证输入伪造身份。
type Manager struct {
	store  Store
	signer *Signer
	ttl    time.Duration
}

// NewManager 创建会话管理器
func NewManager(store Store, signer *Signer, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		signer: signer,
		ttl:    ttl,
	}
}

// Login 为已验证的管理员建立会话，返回会话令牌
func (m *Manager) Login(ctx context.Context, admin *domain.Admin) (string, error) {
	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.New().String(),
		AdminID:   admin.ID,
		AdminName: admin.Name,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Create(ctx, sess, m.ttl); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	token, err := m.signer.Sign(sess.ID, m.ttl)
	if err != nil {
		// 令牌签不出来，残留的会话载荷随 TTL 过期即可
		return "", err
	}

	return token, nil
}

// Current 返回令牌对应的会话身份
//
// 令牌缺失/无效/过期以及会话已销毁均返回 ErrUnauthorized；
// 会话存储本身不可用时返回底层错误，调用方应作为
// 存储故障处理，而非当作未认证。
func (m *Manager) Current(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	sessionID, err := m.signer.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	return sess, nil
}

// Logout 销毁令牌对应的会话，幂等
//
// 令牌无效或会话已不存在都不是错误。
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sessionID, err := m.signer.Parse(token)
	if err != nil {
		return nil
	}

	return m.store.Destroy(ctx, sessionID)
}

// TTL 返回会话有效期
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
