package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tutor/internal/pkg/kvstore"
)

// DefaultChannel 变更通知频道
const DefaultChannel = "tutor:kv:changed"

// Options Redis 连接参数
type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Channel   string
}

// RedisStore Redis 键值存储
// 每次写入后向频道发布键名，其他进程通过 Watch 收到刷新信号
type RedisStore struct {
	client  *redis.Client
	prefix  string
	channel string
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(opts Options) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return newWithClient(client, opts), nil
}

func newWithClient(client *redis.Client, opts Options) *RedisStore {
	channel := opts.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisStore{client: client, prefix: opts.KeyPrefix, channel: channel}
}

// Get 读取值
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapErr(err)
	}
	return v, true, nil
}

// Set 写入值，不设过期时间
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return mapErr(err)
	}
	s.publish(ctx, key)
	return nil
}

// Remove 删除键
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return mapErr(err)
	}
	s.publish(ctx, key)
	return nil
}

// Watch 订阅变更频道，ctx 结束时退订
func (s *RedisStore) Watch(ctx context.Context) (<-chan string, error) {
	sub := s.client.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", s.channel, mapErr(err))
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
				}
			}
		}
	}()
	return out, nil
}

// Close 关闭连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Type 存储类型
func (s *RedisStore) Type() string {
	return string(kvstore.TypeRedis)
}

// Client 获取原始客户端
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// publish 通知失败不影响写入结果
func (s *RedisStore) publish(ctx context.Context, key string) {
	_ = s.client.Publish(ctx, s.channel, key).Err()
}

func mapErr(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return kvstore.ErrClosed
	}
	return err
}
