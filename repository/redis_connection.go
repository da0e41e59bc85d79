package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
)

// scanBatch, SCAN komutunun her iterasyonda istediği key sayısı.
const scanBatch = 100

type redisConnectionRepo struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisConnectionRepo, constructor.
// Her bağlantı "{prefix}:connection:{id}" key'inde bir hash olarak tutulur.
func NewRedisConnectionRepo(client redis.UniversalClient, prefix string) ConnectionRepository {
	return &redisConnectionRepo{client: client, prefix: prefix}
}

func (r *redisConnectionRepo) key(connectionID string) string {
	return r.prefix + ":connection:" + connectionID
}

func (r *redisConnectionRepo) Put(ctx context.Context, conn *models.Connection) error {
	err := r.client.HSet(ctx, r.key(conn.ConnectionID),
		"connection_id", conn.ConnectionID,
		"subject", conn.Subject,
		"established_at", conn.EstablishedAt.UnixMilli(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to put connection: %w", err)
	}
	return nil
}

func (r *redisConnectionRepo) Get(ctx context.Context, connectionID string) (*models.Connection, error) {
	fields, err := r.client.HGetAll(ctx, r.key(connectionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	if len(fields) == 0 {
		return nil, pkg.ErrNotFound
	}
	return connectionFromHash(fields), nil
}

func (r *redisConnectionRepo) Delete(ctx context.Context, connectionID string) error {
	if err := r.client.Del(ctx, r.key(connectionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}

// ScanAll, registry'deki tüm bağlantıları döner.
//
// KEYS yerine SCAN kullanılır, Redis'i bloklamaz. Key'ler toplandıktan sonra
// HGETALL'lar tek bir pipeline'da gönderilir. SCAN ile HGETALL arasında
// silinen bağlantılar sessizce atlanır.
func (r *redisConnectionRepo) ScanAll(ctx context.Context) ([]models.Connection, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.key("*"), scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan connections: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return []models.Connection{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = pipe.HGetAll(ctx, k)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load connections: %w", err)
	}

	conns := make([]models.Connection, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		conn := connectionFromHash(fields)
		// SCAN aynı key'i birden fazla kez döndürebilir
		if _, dup := seen[conn.ConnectionID]; dup {
			continue
		}
		seen[conn.ConnectionID] = struct{}{}
		conns = append(conns, *conn)
	}
	return conns, nil
}

func connectionFromHash(fields map[string]string) *models.Connection {
	conn := &models.Connection{
		ConnectionID: fields["connection_id"],
		Subject:      fields["subject"],
	}
	if ms, err := strconv.ParseInt(fields["established_at"], 10, 64); err == nil {
		conn.EstablishedAt = time.UnixMilli(ms).UTC()
	}
	return conn
}
