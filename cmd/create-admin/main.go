package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"keysmith/backend/internal/auth"
	"keysmith/backend/internal/config"
	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/storage"
	"keysmith/backend/internal/storage/memory"
	sqlstore "keysmith/backend/internal/storage/sql"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: create-admin <email> <password> <name>")
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]
	name := os.Args[3]

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	admin, err := buildAdmin(name, email, password)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	// 创建存储
	var store storage.Store
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		store, err = sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			fmt.Printf("Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
	} else {
		store = memory.NewStore()
	}
	defer store.Close()

	if err := store.CreateAdmin(admin); err != nil {
		fmt.Printf("Failed to create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Admin created successfully!\n")
	fmt.Printf("  ID:    %d\n", admin.ID)
	fmt.Printf("  Email: %s\n", admin.Email)
	fmt.Printf("  Name:  %s\n", admin.Name)

	if cfg.Database.Type == "" {
		fmt.Println("\nNote: no database configured, this admin exists only in memory")
		fmt.Println("and is gone when this process exits. Set KEYSMITH_DATABASE_TYPE")
		fmt.Println("and KEYSMITH_DATABASE_DSN to write to a real database.")
	}
}

// buildAdmin 由命令行参数构造管理员记录
//
// 姓名与邮箱去除首尾空白后再验证，与注册接口一致。
func buildAdmin(name, email, password string) (*domain.Admin, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := domain.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("Invalid email format")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("Failed to hash password: %w", err)
	}

	return &domain.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}
