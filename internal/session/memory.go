package session

import (
	"context"
	"sync"
	"time"

	"keysmith/backend/internal/domain"
)

// MemoryStore 内存会话存储，用于开发验证和测试。
//
// 过期会话在读取时惰性清理。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore 创建内存会话存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
	}
}

// Create 写入会话载荷。
func (s *MemoryStore) Create(_ context.Context, sess *domain.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *sess
	s.sessions[sess.ID] = &stored
	return nil
}

// Get 按会话标识读取载荷。
func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}

	out := *sess
	return &out, nil
}

// Destroy 销毁会话，幂等。
func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Ping 内存存储恒为可用。
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close 内存存储无需释放资源。
func (s *MemoryStore) Close() error {
	return nil
}
