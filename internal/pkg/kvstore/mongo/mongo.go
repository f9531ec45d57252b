package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tutor/internal/pkg/kvstore"
	"tutor/internal/pkg/mongodb"
)

// DefaultCollection 默认集合名称
const DefaultCollection = "kv"

// Entry 键值文档，_id 即键
type Entry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`

	collection string
}

// Collection 集合名称
func (e *Entry) Collection() string {
	if e.collection == "" {
		return DefaultCollection
	}
	return e.collection
}

// EnsureIndexes 创建更新时间索引
func (e *Entry) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return mongodb.CreateIndexes(ctx, db.Collection(e.Collection()), []mongo.IndexModel{
		mongodb.UpdatedAtIndex(),
	})
}

// Store MongoDB 键值存储
type Store struct {
	client *mongodb.Client
	coll   *mongo.Collection
}

// New 基于已连接的客户端创建存储并确保索引
func New(ctx context.Context, client *mongodb.Client, collection string) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if err := mongodb.EnsureAllIndexes(ctx, client.Database(), &Entry{collection: collection}); err != nil {
		return nil, fmt.Errorf("ensure kv indexes: %w", err)
	}
	return &Store{client: client, coll: client.Collection(collection)}, nil
}

// Get 读取值
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapErr(err)
	}
	return entry.Value, true, nil
}

// Set 按键 upsert
func (s *Store) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now()}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	return mapErr(err)
}

// Remove 删除键
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return mapErr(err)
}

// Close 断开连接
func (s *Store) Close() error {
	return s.client.Close(context.Background())
}

// Type 存储类型
func (s *Store) Type() string {
	return string(kvstore.TypeMongo)
}

func mapErr(err error) error {
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return kvstore.ErrClosed
	}
	return err
}
