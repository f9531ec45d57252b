package kvfactory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tutor/internal/config"
	"tutor/internal/pkg/kvstore/kvstoretest"
)

func TestNewStore_Config(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		cfg      *config.StorageConfig
		wantErr  bool
		wantType string
	}{
		{
			name:     "default is memory",
			cfg:      &config.StorageConfig{},
			wantType: "memory",
		},
		{
			name: "valid local storage config",
			cfg: &config.StorageConfig{
				Type:  "local",
				Local: &config.LocalConfig{BasePath: filepath.Join(tmpDir, "local")},
			},
			wantType: "local",
		},
		{
			name: "valid bolt storage config",
			cfg: &config.StorageConfig{
				Type: "bolt",
				Bolt: &config.BoltConfig{Path: filepath.Join(tmpDir, "bolt", "tutor.db")},
			},
			wantType: "bolt",
		},
		{
			name: "valid sqlite storage config",
			cfg: &config.StorageConfig{
				Type: "sqlite",
				SQL:  &config.SQLConfig{DSN: filepath.Join(tmpDir, "tutor.sqlite")},
			},
			wantType: "sqlite",
		},
		{
			name:    "missing local config",
			cfg:     &config.StorageConfig{Type: "local"},
			wantErr: true,
		},
		{
			name:    "missing redis config",
			cfg:     &config.StorageConfig{Type: "redis"},
			wantErr: true,
		},
		{
			name: "invalid sql table name",
			cfg: &config.StorageConfig{
				Type: "sqlite",
				SQL:  &config.SQLConfig{DSN: filepath.Join(tmpDir, "bad.sqlite"), Table: "kv; DROP"},
			},
			wantErr: true,
		},
		{
			name:    "unsupported storage type",
			cfg:     &config.StorageConfig{Type: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(context.Background(), tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Errorf("NewStore() expected error, got nil")
				}
				if store != nil {
					t.Errorf("NewStore() expected nil store, got %v", store)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewStore() unexpected error: %v", err)
			}
			defer store.Close()

			if store.Type() != tt.wantType {
				t.Errorf("NewStore() type = %s, want %s", store.Type(), tt.wantType)
			}
		})
	}
}

func TestNewStore_Conformance(t *testing.T) {
	tmpDir := t.TempDir()

	cfgs := map[string]*config.StorageConfig{
		"memory": {Type: "memory"},
		"local":  {Type: "local", Local: &config.LocalConfig{BasePath: filepath.Join(tmpDir, "local")}},
		"bolt":   {Type: "bolt", Bolt: &config.BoltConfig{Path: filepath.Join(tmpDir, "tutor.db")}},
		"sqlite": {Type: "sqlite", SQL: &config.SQLConfig{DSN: filepath.Join(tmpDir, "tutor.sqlite")}},
	}

	// 需要外部服务的后端通过环境变量开启
	if addr := os.Getenv("TUTOR_TEST_REDIS_ADDR"); addr != "" {
		cfgs["redis"] = &config.StorageConfig{Type: "redis", Redis: &config.RedisConfig{Addr: addr, KeyPrefix: "tutor-test:"}}
	}
	if uri := os.Getenv("TUTOR_TEST_MONGO_URI"); uri != "" {
		cfgs["mongo"] = &config.StorageConfig{Type: "mongo", Mongo: &config.MongoConfig{URI: uri, Database: "tutor_test"}}
	}
	if dsn := os.Getenv("TUTOR_TEST_MYSQL_DSN"); dsn != "" {
		cfgs["mysql"] = &config.StorageConfig{Type: "mysql", SQL: &config.SQLConfig{DSN: dsn}}
	}
	if endpoint := os.Getenv("TUTOR_TEST_MINIO_ENDPOINT"); endpoint != "" {
		cfgs["minio"] = &config.StorageConfig{Type: "minio", MinIO: &config.MinIOConfig{
			Endpoint:  endpoint,
			AccessKey: os.Getenv("TUTOR_TEST_MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("TUTOR_TEST_MINIO_SECRET_KEY"),
			Bucket:    "tutor-test",
		}}
	}

	for name, cfg := range cfgs {
		t.Run(name, func(t *testing.T) {
			store, err := NewStore(context.Background(), cfg)
			if err != nil {
				t.Fatalf("NewStore(%s) error = %v", name, err)
			}
			defer store.Close()

			kvstoretest.Run(t, store)
		})
	}
}
