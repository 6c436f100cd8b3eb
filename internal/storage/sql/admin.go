package sql

import (
	dbsql "database/sql"

	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/storage"
)

// ========== Admin Repository ==========

// CreateAdmin 创建管理员并回填 ID。
//
// 邮箱唯一索引冲突映射为 ErrAdminEmailExists，
// 这是并发注册时的权威冲突信号。
func (s *Store) CreateAdmin(admin *domain.Admin) error {
	if s.driverName == "postgres" {
		query := s.rebind(`
			INSERT INTO admins (name, email, password_hash, created_at)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`)
		err := s.db.QueryRow(query, admin.Name, admin.Email, admin.PasswordHash, admin.CreatedAt).Scan(&admin.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAdminEmailExists
			}
			return err
		}
		return nil
	}

	result, err := s.db.Exec(`
		INSERT INTO admins (name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, admin.Name, admin.Email, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAdminEmailExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	admin.ID = id
	return nil
}

// GetAdminByEmail 按邮箱查找管理员。
func (s *Store) GetAdminByEmail(email string) (*domain.Admin, error) {
	query := s.rebind(`
		SELECT id, name, email, password_hash, created_at
		FROM admins
		WHERE email = ?
	`)

	var admin domain.Admin
	err := s.db.QueryRow(query, email).Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
	)
	if err != nil {
		if err == dbsql.ErrNoRows {
			return nil, storage.ErrAdminNotFound
		}
		return nil, err
	}

	return &admin, nil
}

// AdminEmailExists 判断管理员邮箱是否已注册。
func (s *Store) AdminEmailExists(email string) (bool, error) {
	query := s.rebind(`SELECT 1 FROM admins WHERE email = ?`)

	var one int
	err := s.db.QueryRow(query, email).Scan(&one)
	if err != nil {
		if err == dbsql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
