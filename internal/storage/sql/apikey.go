package sql

import (
	dbsql "database/sql"
	"time"

	"keysmith/backend/internal/domain"
	"keysmith/backend/internal/storage"
)

// ========== Key Repository ==========

// SaveAPIKey 插入一条新密钥记录并回填存储分配的 ID。
func (s *Store) SaveAPIKey(key *domain.APIKey) error {
	id, err := s.insertAPIKey(s.db, key)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateAPIKey
		}
		return err
	}
	key.ID = id
	return nil
}

// execer 抽象 *sql.DB 与 *sql.Tx 的公共执行接口。
type execer interface {
	Exec(query string, args ...interface{}) (dbsql.Result, error)
	QueryRow(query string, args ...interface{}) *dbsql.Row
}

// insertAPIKey 在给定执行器（连接或事务）上插入密钥。
//
// MySQL 通过 LastInsertId 取回自增 ID，PostgreSQL 使用 RETURNING。
func (s *Store) insertAPIKey(ex execer, key *domain.APIKey) (int64, error) {
	if s.driverName == "postgres" {
		query := s.rebind(`
			INSERT INTO api_keys (api_key, status, created_at, expired_at)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`)
		var id int64
		err := ex.QueryRow(query, key.Value, key.Status, key.CreatedAt, key.ExpiredAt).Scan(&id)
		return id, err
	}

	result, err := ex.Exec(`
		INSERT INTO api_keys (api_key, status, created_at, expired_at)
		VALUES (?, ?, ?, ?)
	`, key.Value, key.Status, key.CreatedAt, key.ExpiredAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetAPIKeyByValue 按密钥串查找密钥记录。
func (s *Store) GetAPIKeyByValue(value string) (*domain.APIKey, error) {
	query := s.rebind(`
		SELECT id, api_key, status, created_at, expired_at
		FROM api_keys
		WHERE api_key = ?
	`)

	var key domain.APIKey
	var expiredAt dbsql.NullTime

	err := s.db.QueryRow(query, value).Scan(
		&key.ID,
		&key.Value,
		&key.Status,
		&key.CreatedAt,
		&expiredAt,
	)
	if err != nil {
		if err == dbsql.ErrNoRows {
			return nil, storage.ErrAPIKeyNotFound
		}
		return nil, err
	}

	if expiredAt.Valid {
		key.ExpiredAt = &expiredAt.Time
	}

	return &key, nil
}

// DeleteAPIKey 删除一条密钥记录。
func (s *Store) DeleteAPIKey(id int64) error {
	result, err := s.db.Exec(s.rebind(`DELETE FROM api_keys WHERE id = ?`), id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrAPIKeyNotFound
	}
	return nil
}

// DeactivateExpiredKeys 将已过期的 active 密钥置为 inactive。
func (s *Store) DeactivateExpiredKeys(now time.Time) (int, error) {
	query := s.rebind(`
		UPDATE api_keys
		SET status = ?
		WHERE status = ? AND expired_at IS NOT NULL AND expired_at <= ?
	`)

	result, err := s.db.Exec(query, domain.KeyStatusInactive, domain.KeyStatusActive, now)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
