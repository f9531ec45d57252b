package kvfactory

import (
	"context"
	"fmt"

	"tutor/internal/config"
	"tutor/internal/pkg/kvstore"
	boltkv "tutor/internal/pkg/kvstore/bolt"
	"tutor/internal/pkg/kvstore/local"
	"tutor/internal/pkg/kvstore/memory"
	miniokv "tutor/internal/pkg/kvstore/minio"
	mongokv "tutor/internal/pkg/kvstore/mongo"
	"tutor/internal/pkg/kvstore/oss"
	rediskv "tutor/internal/pkg/kvstore/redis"
	"tutor/internal/pkg/kvstore/sqlstore"
	"tutor/internal/pkg/mongodb"
)

// NewStore 根据配置创建键值存储实例
func NewStore(ctx context.Context, cfg *config.StorageConfig) (kvstore.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch kvstore.Type(cfg.Type) {
	case kvstore.TypeMemory, "":
		return memory.New(), nil
	case kvstore.TypeLocal:
		return wrap(local.NewLocalStore(cfg.Local.BasePath))
	case kvstore.TypeBolt:
		return wrap(boltkv.Open(cfg.Bolt.Path, cfg.Bolt.Bucket))
	case kvstore.TypeSQLite, kvstore.TypeMySQL:
		return wrap(sqlstore.Open(cfg.Type, cfg.SQL.DSN, cfg.SQL.Table))
	case kvstore.TypeRedis:
		return wrap(rediskv.NewRedisStore(rediskv.Options{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			Channel:   cfg.Redis.Channel,
		}))
	case kvstore.TypeMongo:
		client, err := mongodb.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		store, err := mongokv.New(ctx, client, cfg.Mongo.Collection)
		if err != nil {
			_ = client.Close(context.Background())
			return nil, err
		}
		return store, nil
	case kvstore.TypeOSS:
		return wrap(oss.NewOSSStore(
			cfg.OSS.Endpoint,
			cfg.OSS.Bucket,
			cfg.OSS.AccessKeyID,
			cfg.OSS.AccessKeySecret,
			cfg.OSS.Prefix,
		))
	case kvstore.TypeMinIO:
		return wrap(miniokv.New(ctx, miniokv.Options{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
			Prefix:    cfg.MinIO.Prefix,
		}))
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// wrap 避免把带类型的 nil 指针放进接口
func wrap[T kvstore.Store](store T, err error) (kvstore.Store, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}
