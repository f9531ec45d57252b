package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"tutor/internal/pkg/kvstore"
)

// DefaultTable 默认表名
const DefaultTable = "kv_entries"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store 基于 database/sql 的键值存储，支持 sqlite 和 mysql
type Store struct {
	db     *sql.DB
	driver string
	table  string
}

// Open 连接数据库并建表
func Open(driver, dsn, table string) (*Store, error) {
	driver = normalizeDriver(driver)
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn must be provided", driver)
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case "sqlite3":
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// sqlite 单写者
		db.SetMaxOpenConns(1)
	case "mysql":
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, driver: driver, table: table}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Get 读取值
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := fmt.Sprintf("SELECT v FROM %s WHERE k = ?", s.table)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.mapErr(fmt.Errorf("select key %s: %w", key, err))
	}
	return value, true, nil
}

// Set 插入或覆盖
func (s *Store) Set(ctx context.Context, key, value string) error {
	var query string
	switch s.driver {
	case "mysql":
		query = fmt.Sprintf(`INSERT INTO %s (k, v, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)`, s.table)
	default:
		query = fmt.Sprintf(`INSERT INTO %s (k, v, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`, s.table)
	}
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return s.mapErr(fmt.Errorf("upsert key %s: %w", key, err))
	}
	return nil
}

// Remove 删除键
func (s *Store) Remove(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE k = ?", s.table)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return s.mapErr(fmt.Errorf("delete key %s: %w", key, err))
	}
	return nil
}

// Close 关闭连接池
func (s *Store) Close() error {
	return s.db.Close()
}

// Type 存储类型
func (s *Store) Type() string {
	if s.driver == "mysql" {
		return string(kvstore.TypeMySQL)
	}
	return string(kvstore.TypeSQLite)
}

func (s *Store) migrate() error {
	var stmt string
	switch s.driver {
	case "mysql":
		stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			k VARCHAR(191) NOT NULL PRIMARY KEY,
			v LONGTEXT NOT NULL,
			updated_at DATETIME(3) NOT NULL
		) DEFAULT CHARSET=utf8mb4`, s.table)
	default:
		stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`, s.table)
	}
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *Store) mapErr(err error) error {
	if strings.Contains(err.Error(), "sql: database is closed") {
		return fmt.Errorf("%w: %v", kvstore.ErrClosed, err)
	}
	return err
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3", "":
		return "sqlite3"
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}
