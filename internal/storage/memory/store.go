package memory

import (
	"sync"
	"time"

	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/storage"
)

// Store 使用内存保存密钥、用户与管理员数据，主要用于开发验证和测试。
//
// 单把互斥锁覆盖全部状态，复合写操作（签发密钥+创建用户、
// 级联删除）在一次加锁内完成，天然满足原子性要求。
type Store struct {
	mu sync.RWMutex

	keys       map[int64]*domain.APIKey // keyID -> key
	byKeyValue map[string]int64         // 密钥串 -> keyID
	users      map[int64]*domain.User   // userID -> user
	admins     map[int64]*domain.Admin  // adminID -> admin
	byEmail    map[string]int64         // 管理员邮箱 -> adminID

	nextKeyID   int64
	nextUserID  int64
	nextAdminID int64
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		keys:       make(map[int64]*domain.APIKey),
		byKeyValue: make(map[string]int64),
		users:      make(map[int64]*domain.User),
		admins:     make(map[int64]*domain.Admin),
		byEmail:    make(map[string]int64),
	}
}

// ========== Key Repository ==========

// SaveAPIKey 保存一条新密钥记录并分配 ID。
func (s *Store) SaveAPIKey(key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAPIKeyLocked(key)
}

// saveAPIKeyLocked 在持锁状态下写入密钥，调用方负责加锁。
func (s *Store) saveAPIKeyLocked(key *domain.APIKey) error {
	if _, exists := s.byKeyValue[key.Value]; exists {
		return storage.ErrDuplicateAPIKey
	}

	s.nextKeyID++
	key.ID = s.nextKeyID

	stored := *key
	s.keys[key.ID] = &stored
	s.byKeyValue[key.Value] = key.ID
	return nil
}

// GetAPIKeyByValue 按密钥串查找密钥记录。
func (s *Store) GetAPIKeyByValue(value string) (*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKeyValue[value]
	if !ok {
		return nil, storage.ErrAPIKeyNotFound
	}

	key := *s.keys[id]
	return &key, nil
}

// DeleteAPIKey 删除一条密钥记录。
func (s *Store) DeleteAPIKey(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[id]
	if !ok {
		return storage.ErrAPIKeyNotFound
	}

	delete(s.byKeyValue, key.Value)
	delete(s.keys, id)
	return nil
}

// DeactivateExpiredKeys 将已过期的 active 密钥置为 inactive。
func (s *Store) DeactivateExpiredKeys(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, key := range s.keys {
		if key.Status == domain.KeyStatusActive && key.ExpiredAt != nil && !now.Before(*key.ExpiredAt) {
			key.Status = domain.KeyStatusInactive
			count++
		}
	}
	return count, nil
}

// ========== User Repository ==========

// CreateUserWithKey 在一次原子操作内签发密钥并创建用户。
//
// 两条记录要么都写入，要么都不写入。
func (s *Store) CreateUserWithKey(user *domain.User, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveAPIKeyLocked(key); err != nil {
		return err
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.APIKeyID = key.ID

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

// GetUserByID 按 ID 查找用户。
func (s *Store) GetUserByID(id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	u := *user
	return &u, nil
}

// DeleteUserCascade 删除用户及其独占的密钥。
//
// 用户不存在时返回 ErrUserNotFound 且不产生任何副作用。
func (s *Store) DeleteUserCascade(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	if key, ok := s.keys[user.APIKeyID]; ok {
		delete(s.byKeyValue, key.Value)
		delete(s.keys, user.APIKeyID)
	}
	delete(s.users, userID)
	return nil
}

// ListUsersWithKeys 返回所有用户及其密钥元数据，按用户 ID 降序。
func (s *Store) ListUsersWithKeys() ([]domain.UserWithKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.UserWithKey, 0, len(s.users))
	// 用户 ID 单调递增，从大到小遍历即为降序
	for id := s.nextUserID; id >= 1; id-- {
		user, ok := s.users[id]
		if !ok {
			continue
		}
		key, ok := s.keys[user.APIKeyID]
		if !ok {
			continue
		}
		rows = append(rows, domain.UserWithKey{
			ID:        user.ID,
			Firstname: user.Firstname,
			Lastname:  user.Lastname,
			Email:     user.Email,
			APIKey:    key.Value,
			Status:    key.Status,
			CreatedAt: key.CreatedAt,
			ExpiredAt: key.ExpiredAt,
		})
	}
	return rows, nil
}

// ========== Admin Repository ==========

// CreateAdmin 创建管理员，邮箱冲突时返回 ErrAdminEmailExists。
func (s *Store) CreateAdmin(admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[admin.Email]; exists {
		return storage.ErrAdminEmailExists
	}

	s.nextAdminID++
	admin.ID = s.nextAdminID

	stored := *admin
	s.admins[admin.ID] = &stored
	s.byEmail[admin.Email] = admin.ID
	return nil
}

// GetAdminByEmail 按邮箱查找管理员。
func (s *Store) GetAdminByEmail(email string) (*domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrAdminNotFound
	}

	admin := *s.admins[id]
	return &admin, nil
}

// AdminEmailExists 判断管理员邮箱是否已注册。
func (s *Store) AdminEmailExists(email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byEmail[email]
	return ok, nil
}

// Health 内存存储恒为健康。
func (s *Store) Health() error {
	return nil
}

// Close 内存存储无需释放资源。
func (s *Store) Close() error {
	return nil
}
