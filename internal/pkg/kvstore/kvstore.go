package kvstore

import (
	"context"
	"errors"
)

// ErrClosed 存储已关闭
var ErrClosed = errors.New("kv store is closed")

// Store 键值存储接口
// 单个操作是原子的，但不提供事务：读-改-写由调用方自行承担覆盖风险
type Store interface {
	// Get 读取值，键不存在时 ok 为 false
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 写入值
	Set(ctx context.Context, key, value string) error

	// Remove 删除键，键不存在不视为错误
	Remove(ctx context.Context, key string) error

	// Close 释放连接
	Close() error

	// Type 存储类型
	Type() string
}

// Watcher 可以推送其他进程修改键的通知
// 通知只是刷新信号，不保证送达或一致性
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Type 存储类型
type Type string

const (
	TypeMemory Type = "memory" // 进程内存
	TypeLocal  Type = "local"  // 本地文件系统
	TypeBolt   Type = "bolt"   // BoltDB 单文件
	TypeSQLite Type = "sqlite" // SQLite
	TypeMySQL  Type = "mysql"  // MySQL
	TypeRedis  Type = "redis"  // Redis
	TypeMongo  Type = "mongo"  // MongoDB
	TypeOSS    Type = "oss"    // 阿里云OSS
	TypeMinIO  Type = "minio"  // MinIO
)
