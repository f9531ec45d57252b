package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	AI       AIConfig       `mapstructure:"ai"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Bookmark BookmarkConfig `mapstructure:"bookmark"`
	Client   ClientConfig   `mapstructure:"client"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"` // 0 表示在端口范围内自动查找
	Mode           string        `mapstructure:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	PortRangeStart int           `mapstructure:"port_range_start"`
	PortRangeEnd   int           `mapstructure:"port_range_end"`
	PortFile       string        `mapstructure:"port_file"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// AIConfig AI 服务配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"`
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`  // 默认模型
	Models   []string        `mapstructure:"models"` // 对外提供的模型列表，test_mode 总是附加
	BaseURL  string          `mapstructure:"base_url"`
	Timeout  time.Duration   `mapstructure:"timeout"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"` // stdout / stderr / file
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // 以下为文件轮转参数 (lumberjack)
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// StorageConfig 键值存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // memory, local, bolt, sqlite, mysql, redis, mongo, oss, minio
	Local *LocalConfig `mapstructure:"local,omitempty"`
	Bolt  *BoltConfig  `mapstructure:"bolt,omitempty"`
	SQL   *SQLConfig   `mapstructure:"sql,omitempty"`
	Redis *RedisConfig `mapstructure:"redis,omitempty"`
	Mongo *MongoConfig `mapstructure:"mongo,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
	MinIO *MinIOConfig `mapstructure:"minio,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 基础路径
}

// BoltConfig BoltDB 配置
type BoltConfig struct {
	Path   string `mapstructure:"path"`
	Bucket string `mapstructure:"bucket"`
}

// SQLConfig sqlite / mysql 配置
type SQLConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	Collection  string `mapstructure:"collection"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	Channel   string `mapstructure:"channel"` // 变更通知频道
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	Prefix          string `mapstructure:"prefix"`            // 对象前缀
}

// MinIOConfig MinIO 配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// BookmarkConfig 收藏配置
type BookmarkConfig struct {
	Key         string `mapstructure:"key"`          // 存储键，默认 chatBookmarks
	SeedExample bool   `mapstructure:"seed_example"` // 空集合时写入示例收藏
}

// ClientConfig 终端客户端配置
type ClientConfig struct {
	ServerURL string        `mapstructure:"server_url"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Storage   StorageConfig `mapstructure:"storage"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Server.Port == 0 {
		if c.Server.PortRangeStart <= 0 || c.Server.PortRangeEnd > 65535 || c.Server.PortRangeStart > c.Server.PortRangeEnd {
			return fmt.Errorf("invalid port range %d-%d", c.Server.PortRangeStart, c.Server.PortRangeEnd)
		}
	}

	if c.Bookmark.Key == "" {
		return errors.New("bookmark key is required")
	}

	return c.Storage.Validate()
}

// Validate 检查所选存储类型的配置块是否存在
func (s *StorageConfig) Validate() error {
	switch s.Type {
	case "", "memory":
		return nil
	case "local":
		if s.Local == nil || s.Local.BasePath == "" {
			return errors.New("storage.local.base_path is required")
		}
	case "bolt":
		if s.Bolt == nil || s.Bolt.Path == "" {
			return errors.New("storage.bolt.path is required")
		}
	case "sqlite", "mysql":
		if s.SQL == nil || s.SQL.DSN == "" {
			return errors.New("storage.sql.dsn is required")
		}
	case "redis":
		if s.Redis == nil || s.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required")
		}
	case "mongo":
		if s.Mongo == nil || s.Mongo.URI == "" {
			return errors.New("storage.mongo.uri is required")
		}
	case "oss":
		if s.OSS == nil || s.OSS.Bucket == "" {
			return errors.New("storage.oss.bucket is required")
		}
	case "minio":
		if s.MinIO == nil || s.MinIO.Bucket == "" {
			return errors.New("storage.minio.bucket is required")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", s.Type)
	}
	return nil
}
