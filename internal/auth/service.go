package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/storage"
)

var (
	// ErrMissingFields 必填字段缺失
	ErrMissingFields = errors.New("name, email and password are required")
	// ErrInvalidEmail 邮箱格式无效
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrEmailExists 邮箱已被注册
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials 凭证无效
	//
	// 邮箱不存在与密码错误统一返回该错误，
	// 对外不暴露到底是哪个字段不对。
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service 管理员认证服务
type Service struct {
	admins storage.AdminRepository
}

// NewService 创建认证服务
func NewService(admins storage.AdminRepository) *Service {
	return &Service{admins: admins}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string
	Password string
}

// Register 管理员注册
//
// 邮箱在比较与存储前去除首尾空白，不做其他归一化。
// 先查后插只用于提前给出冲突提示；并发竞争下以
// 存储层唯一约束（ErrAdminEmailExists）为权威信号。
func (s *Service) Register(input RegisterInput) (*domain.Admin, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	if name == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if err := domain.ValidateEmail(email); err != nil {
		return nil, ErrInvalidEmail
	}

	exists, err := s.admins.AdminEmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check admin email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := s.admins.CreateAdmin(admin); err != nil {
		if errors.Is(err, storage.ErrAdminEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return admin, nil
}

// Login 管理员登录
//
// 查不到邮箱与密码不匹配走同一条失败路径，
// 返回的错误值完全相同。
func (s *Service) Login(input LoginInput) (*domain.Admin, error) {
	email := strings.TrimSpace(input.Email)

	if email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	admin, err := s.admins.GetAdminByEmail(email)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if !CheckPassword(input.Password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}

// HashPassword 哈希密码（bcrypt，带盐与成本因子）
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 检查密码是否匹配
//
// 哈希串损坏与密码不匹配同样返回 false，
// 调用方无法区分两种失败。
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
