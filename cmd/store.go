package cmd

import (
	"context"
	"fmt"

	"tutor/internal/config"
	"tutor/internal/pkg/conversation"
	"tutor/internal/pkg/kvfactory"
	"tutor/internal/pkg/kvstore"
	"tutor/internal/repository"
	"tutor/internal/service"
)

// localServices 命令行直接访问存储时使用的服务
type localServices struct {
	kv        kvstore.Store
	bookmarks *service.BookmarkService
	prefs     *service.PreferenceService
}

func openLocalServices(ctx context.Context, storage *config.StorageConfig, key string) (*localServices, error) {
	kv, err := kvfactory.NewStore(ctx, storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &localServices{
		kv:        kv,
		bookmarks: service.NewBookmarkService(repository.NewBookmarkRepo(kv, key, nil), conversation.NewRegistry()),
		prefs:     service.NewPreferenceService(repository.NewPreferenceRepo(kv)),
	}, nil
}

func (s *localServices) Close() error {
	return s.kv.Close()
}

// storageFor 选择服务端存储或终端客户端存储
func storageFor(cfg *config.Config, client bool) *config.StorageConfig {
	if client {
		return &cfg.Client.Storage
	}
	return &cfg.Storage
}
