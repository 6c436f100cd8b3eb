package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"keysmith/backend/internal/domain"
)

// Store SQL 数据库存储实现（支持 MySQL 5.7+ 和 PostgreSQL）
//
// 所有语句均为参数化查询；两个复合写操作在单个事务内完成。
type Store struct {
	db         *sql.DB
	gormDB     *gorm.DB // GORM实例，仅用于建表迁移
	driverName string   // "mysql" or "postgres"
}

// NewStore 创建SQL数据库存储
func NewStore(
	driverName string,
	dsn string,
	maxOpenConns int,
	maxIdleConns int,
	connMaxLifetime time.Duration,
) (*Store, error) {
	if driverName != "mysql" && driverName != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var gormDB *gorm.DB
	if driverName == "mysql" {
		gormDB, err = gorm.Open(gormmysql.New(gormmysql.Config{Conn: db}), gormConfig)
	} else {
		gormDB, err = gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db}), gormConfig)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	store := &Store{
		db:         db,
		gormDB:     gormDB,
		driverName: driverName,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Health 检查数据库健康状态
func (s *Store) Health() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Ping()
}

// migrate 执行数据库迁移（使用GORM AutoMigrate）
func (s *Store) migrate() error {
	if s.gormDB == nil {
		return nil
	}

	return s.gormDB.AutoMigrate(
		&domain.APIKey{},
		&domain.User{},
		&domain.Admin{},
	)
}

// rebind 将 "?" 占位符改写为 PostgreSQL 的 "$n" 形式
//
// 语句统一以 "?" 书写，MySQL 原样使用。
func (s *Store) rebind(query string) string {
	if s.driverName != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation 判断错误是否为唯一约束冲突
//
// 唯一约束是邮箱与密钥串唯一性的权威防线，
// 先查后插只用来提前给出友好提示。
func isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
