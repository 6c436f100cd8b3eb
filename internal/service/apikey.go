package service

import (
	"errors"
	"fmt"
	"time"

	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/keygen"
	"keysmith/backend/internal/storage"
)

var (
	// ErrMissingFields 必填字段缺失
	ErrMissingFields = errors.New("firstname, lastname and email are required")
	// ErrMissingAPIKey 未提供 API 密钥
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateAPIKey 密钥串已被占用
	ErrDuplicateAPIKey = errors.New("api key already in use")
)

// APIKeyService 密钥生命周期业务服务
type APIKeyService struct {
	store  storage.Store
	keyTTL time.Duration // 新签发密钥的有效期
}

// NewAPIKeyService 创建密钥服务
func NewAPIKeyService(store storage.Store, keyTTL time.Duration) *APIKeyService {
	return &APIKeyService{
		store:  store,
		keyTTL: keyTTL,
	}
}

// GenerateKey 为给定用户信息生成一把新密钥
//
// 只生成不落库；持久化由后续 SaveUser 一步完成。
func (s *APIKeyService) GenerateKey(firstname, lastname, email string) (string, error) {
	if !domain.AllFieldsPresent(firstname, lastname, email) {
		return "", ErrMissingFields
	}

	key, err := keygen.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return key, nil
}

// SaveUserInput 保存用户的输入参数
type SaveUserInput struct {
	Firstname string
	Lastname  string
	Email     string
	APIKey    string
}

// SaveUser 持久化密钥并创建其所属用户
//
// 密钥记录取当前时间为创建时间、创建时间+有效期为过期
// 时间、状态 active；两条记录在存储层单个事务内写入。
func (s *APIKeyService) SaveUser(input SaveUserInput) (*domain.User, error) {
	if input.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if !domain.AllFieldsPresent(input.Firstname, input.Lastname, input.Email) {
		return nil, ErrMissingFields
	}

	now := time.Now()
	expiredAt := now.Add(s.keyTTL)

	key := &domain.APIKey{
		Value:     input.APIKey,
		Status:    domain.KeyStatusActive,
		CreatedAt: now,
		ExpiredAt: &expiredAt,
	}
	user := &domain.User{
		Firstname: input.Firstname,
		Lastname:  input.Lastname,
		Email:     input.Email,
	}

	if err := s.store.CreateUserWithKey(user, key); err != nil {
		if errors.Is(err, storage.ErrDuplicateAPIKey) {
			return nil, ErrDuplicateAPIKey
		}
		return nil, fmt.Errorf("failed to save user with key: %w", err)
	}

	return user, nil
}

// DeleteUser 删除用户及其独占的密钥
func (s *APIKeyService) DeleteUser(userID int64) error {
	if err := s.store.DeleteUserCascade(userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// KeyValidation 密钥校验结果
type KeyValidation struct {
	Valid     bool       `json:"valid"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// ValidateKey 校验密钥当前是否可用
//
// 可用性显式检查状态与过期时间（valid = status == active
// && now < expiredAt），而不是仅看记录是否存在。
// 无论密钥不存在、已停用还是已过期，结果都只是
// valid=false，不区分原因。
func (s *APIKeyService) ValidateKey(value string) (*KeyValidation, error) {
	if value == "" {
		return &KeyValidation{Valid: false}, nil
	}

	key, err := s.store.GetAPIKeyByValue(value)
	if err != nil {
		if errors.Is(err, storage.ErrAPIKeyNotFound) {
			return &KeyValidation{Valid: false}, nil
		}
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	if !key.IsUsable(time.Now()) {
		return &KeyValidation{Valid: false}, nil
	}

	return &KeyValidation{
		Valid:     true,
		CreatedAt: &key.CreatedAt,
	}, nil
}

// Dashboard 返回仪表盘数据：所有用户及其密钥元数据，最新用户在前
func (s *APIKeyService) Dashboard() ([]domain.UserWithKey, error) {
	rows, err := s.store.ListUsersWithKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to list users with keys: %w", err)
	}
	return rows, nil
}

// DeactivateExpiredKeys 将已过期的 active 密钥置为 inactive
//
// 仅用于让仪表盘状态列与事实一致；ValidateKey 不依赖
// 这次巡检，总是自行检查过期时间。
func (s *APIKeyService) DeactivateExpiredKeys() (int, error) {
	return s.store.DeactivateExpiredKeys(time.Now())
}
