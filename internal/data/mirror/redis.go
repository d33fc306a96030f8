package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/hetiograph/internal/domain"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// RedisStore mirrors each node as a hash at <prefix><id>.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	log    *logger.Logger
}

func NewRedisStore(ctx context.Context, cfg RedisConfig, log *logger.Logger) (*RedisStore, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("mirror: missing redis addr")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "hetio:node:"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, perrors.StoreConnection("mirror ping", "redis", err)
	}
	return &RedisStore{rdb: rdb, prefix: prefix, log: log.With("store", "RedisMirror")}, nil
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Key(id string) string { return s.prefix + id }

func (s *RedisStore) UpsertNodes(ctx context.Context, nodes []domain.NodeRecord) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		for _, n := range nodes {
			attrs := "{}"
			if len(n.Attrs) > 0 {
				raw, err := json.Marshal(n.Attrs)
				if err != nil {
					return err
				}
				attrs = string(raw)
			}
			key := s.Key(n.ID)
			// Replace, not merge: stale fields from an earlier load must go.
			p.Del(ctx, key)
			p.HSet(ctx, key, "id", n.ID, "name", n.Name, "kind", n.Kind, "attrs", attrs, "updated_at", now)
		}
		return nil
	})
	if err != nil {
		return 0, perrors.StoreConnection("mirror upsert", "redis", err)
	}
	return len(nodes), nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (map[string]string, error) {
	m, err := s.rdb.HGetAll(ctx, s.Key(id)).Result()
	if err != nil {
		return nil, perrors.StoreConnection("mirror get", "redis", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
