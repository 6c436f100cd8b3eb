package storage

import (
	"errors"
	"time"

	"keysmith/backend/internal/domain"
)

var (
	// ErrAPIKeyNotFound 密钥未找到错误
	ErrAPIKeyNotFound = errors.New("api key not found")
	// ErrUserNotFound 用户未找到错误
	ErrUserNotFound = errors.New("user not found")
	// ErrAdminNotFound 管理员未找到错误
	ErrAdminNotFound = errors.New("admin not found")
	// ErrAdminEmailExists 管理员邮箱已存在错误（唯一约束的权威信号）
	ErrAdminEmailExists = errors.New("admin email already exists")
	// ErrDuplicateAPIKey 密钥串冲突错误（唯一约束的权威信号）
	ErrDuplicateAPIKey = errors.New("api key value already exists")
)

// KeyRepository 定义密钥数据存取操作。
type KeyRepository interface {
	SaveAPIKey(key *domain.APIKey) error
	GetAPIKeyByValue(value string) (*domain.APIKey, error)
	DeleteAPIKey(id int64) error
	DeactivateExpiredKeys(now time.Time) (int, error) // 将已过期的 active 密钥置为 inactive，返回数量
}

// UserRepository 定义用户数据存取操作。
//
// CreateUserWithKey 与 DeleteUserCascade 是仅有的两个复合写操作，
// 实现必须保证原子性：并发读取方不能观察到只写了一半的状态。
type UserRepository interface {
	CreateUserWithKey(user *domain.User, key *domain.APIKey) error
	GetUserByID(id int64) (*domain.User, error)
	DeleteUserCascade(userID int64) error
	ListUsersWithKeys() ([]domain.UserWithKey, error) // 按用户 ID 降序
}

// AdminRepository 定义管理员数据存取操作。
type AdminRepository interface {
	CreateAdmin(admin *domain.Admin) error
	GetAdminByEmail(email string) (*domain.Admin, error)
	AdminEmailExists(email string) (bool, error)
}

// Store 聚合所有存储接口
type Store interface {
	KeyRepository
	UserRepository
	AdminRepository

	Health() error
	Close() error
}
