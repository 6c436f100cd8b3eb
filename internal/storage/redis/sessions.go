package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/session"
)

// SessionStore 基于 Redis 的会话存储
//
// 载荷以 JSON 存于 "session:<id>"，由 Redis 的键过期
// 机制负责到期清理。
type SessionStore struct {
	client *Client
}

// NewSessionStore 创建 Redis 会话存储
func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

// sessionKey 拼接会话键名
func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create 写入会话载荷并设置过期时间
func (s *SessionStore) Create(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.rdb.Set(ctx, sessionKey(sess.ID), data, ttl).Err()
}

// Get 按会话标识读取载荷
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}

	return &sess, nil
}

// Destroy 销毁会话，键不存在时同样成功
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	return s.client.rdb.Del(ctx, sessionKey(id)).Err()
}

// Ping 检查 Redis 可用性
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close 关闭底层连接
func (s *SessionStore) Close() error {
	return s.client.Close()
}
