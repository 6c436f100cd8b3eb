package sql

import (
	dbsql "database/sql"

	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/storage"
)

// ========== User Repository ==========

// CreateUserWithKey 在单个事务内签发密钥并创建用户。
//
// 任一步失败则整体回滚，并发读取方不会观察到
// 只有密钥没有用户（或相反）的中间状态。
func (s *Store) CreateUserWithKey(user *domain.User, key *domain.APIKey) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	keyID, err := s.insertAPIKey(tx, key)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateAPIKey
		}
		return err
	}

	userID, err := s.insertUser(tx, user, keyID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	key.ID = keyID
	user.ID = userID
	user.APIKeyID = keyID
	return nil
}

// insertUser 在事务内插入用户记录。
func (s *Store) insertUser(ex execer, user *domain.User, keyID int64) (int64, error) {
	if s.driverName == "postgres" {
		query := s.rebind(`
			INSERT INTO users (firstname, lastname, email, apikey_id)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`)
		var id int64
		err := ex.QueryRow(query, user.Firstname, user.Lastname, user.Email, keyID).Scan(&id)
		return id, err
	}

	result, err := ex.Exec(`
		INSERT INTO users (firstname, lastname, email, apikey_id)
		VALUES (?, ?, ?, ?)
	`, user.Firstname, user.Lastname, user.Email, keyID)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetUserByID 按 ID 查找用户。
func (s *Store) GetUserByID(id int64) (*domain.User, error) {
	query := s.rebind(`
		SELECT id, firstname, lastname, email, apikey_id
		FROM users
		WHERE id = ?
	`)

	var user domain.User
	err := s.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Firstname,
		&user.Lastname,
		&user.Email,
		&user.APIKeyID,
	)
	if err != nil {
		if err == dbsql.ErrNoRows {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// DeleteUserCascade 在单个事务内删除用户及其独占的密钥。
//
// 先删用户再删密钥（外键约束要求的顺序）；任一步失败
// 则整体回滚，不会留下指向缺失密钥的用户，也不会留下
// 孤儿密钥。用户不存在时返回 ErrUserNotFound 且无任何副作用。
func (s *Store) DeleteUserCascade(userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var apikeyID int64
	err = tx.QueryRow(s.rebind(`SELECT apikey_id FROM users WHERE id = ?`), userID).Scan(&apikeyID)
	if err != nil {
		if err == dbsql.ErrNoRows {
			return storage.ErrUserNotFound
		}
		return err
	}

	if _, err := tx.Exec(s.rebind(`DELETE FROM users WHERE id = ?`), userID); err != nil {
		return err
	}

	if _, err := tx.Exec(s.rebind(`DELETE FROM api_keys WHERE id = ?`), apikeyID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListUsersWithKeys 返回所有用户及其密钥元数据，按用户 ID 降序。
func (s *Store) ListUsersWithKeys() ([]domain.UserWithKey, error) {
	query := `
		SELECT u.id, u.firstname, u.lastname, u.email,
		       k.api_key, k.status, k.created_at, k.expired_at
		FROM users u
		INNER JOIN api_keys k ON u.apikey_id = k.id
		ORDER BY u.id DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserWithKey
	for rows.Next() {
		var row domain.UserWithKey
		var expiredAt dbsql.NullTime

		err := rows.Scan(
			&row.ID,
			&row.Firstname,
			&row.Lastname,
			&row.Email,
			&row.APIKey,
			&row.Status,
			&row.CreatedAt,
			&expiredAt,
		)
		if err != nil {
			return nil, err
		}

		if expiredAt.Valid {
			row.ExpiredAt = &expiredAt.Time
		}

		out = append(out, row)
	}

	return out, rows.Err()
}
