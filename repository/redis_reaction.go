package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
)

const (
	fieldVersion  = "version"
	fieldCounters = "counters"
)

type redisReactionRepo struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisReactionRepo, constructor.
//
// State "{prefix}:reaction:{id}" hash'inde iki field olarak tutulur:
// "version" (integer) ve "counters" (msgpack ile encode edilmiş []EmojiCounter).
func NewRedisReactionRepo(client redis.UniversalClient, prefix string) ReactionRepository {
	return &redisReactionRepo{client: client, prefix: prefix}
}

func (r *redisReactionRepo) key(reactionID string) string {
	return r.prefix + ":reaction:" + reactionID
}

func (r *redisReactionRepo) Create(ctx context.Context, state *models.ReactionState) error {
	counters, err := msgpack.Marshal(state.Counters)
	if err != nil {
		return fmt.Errorf("failed to encode reaction counters: %w", err)
	}

	key := r.key(state.ReactionID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: reaction state %s", pkg.ErrAlreadyExists, state.ReactionID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldVersion, state.Version, fieldCounters, counters)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return err
		}
		if errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("%w: reaction state %s", pkg.ErrAlreadyExists, state.ReactionID)
		}
		return fmt.Errorf("failed to create reaction state: %w", err)
	}
	return nil
}

func (r *redisReactionRepo) Get(ctx context.Context, reactionID string) (*models.ReactionState, error) {
	state, err := readReactionState(ctx, r.client, r.key(reactionID), reactionID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get reaction state: %w", err)
	}
	return state, nil
}

// CompareAndSwap, WATCH/MULTI/EXEC ile koşullu yazma yapar.
//
// WATCH'tan sonra version okunur; beklenenden farklıysa hiç yazılmaz.
// EXEC'e kadar key başka bir client tarafından değiştirilirse Redis
// transaction'ı iptal eder (redis.TxFailedErr), bu da conflict sayılır.
func (r *redisReactionRepo) CompareAndSwap(ctx context.Context, state *models.ReactionState, expectedVersion int64) error {
	counters, err := msgpack.Marshal(state.Counters)
	if err != nil {
		return fmt.Errorf("failed to encode reaction counters: %w", err)
	}

	key := r.key(state.ReactionID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, fieldVersion).Result()
		if errors.Is(err, redis.Nil) {
			return pkg.ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt reaction version %q: %w", raw, err)
		}
		if current != expectedVersion {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldVersion, expectedVersion+1, fieldCounters, counters)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		state.Version = expectedVersion + 1
		return nil
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, ErrVersionConflict):
		return ErrVersionConflict
	case errors.Is(err, pkg.ErrNotFound):
		return err
	default:
		return fmt.Errorf("failed to write reaction state: %w", err)
	}
}

// readReactionState, hash'i okuyup decode eder. Key yoksa pkg.ErrNotFound.
func readReactionState(ctx context.Context, c redis.Cmdable, key, reactionID string) (*models.ReactionState, error) {
	fields, err := c.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, pkg.ErrNotFound
	}

	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt reaction version %q: %w", fields[fieldVersion], err)
	}

	state := &models.ReactionState{ReactionID: reactionID, Version: version}
	if err := msgpack.Unmarshal([]byte(fields[fieldCounters]), &state.Counters); err != nil {
		return nil, fmt.Errorf("corrupt reaction counters: %w", err)
	}
	if state.Counters == nil {
		state.Counters = []models.EmojiCounter{}
	}
	return state, nil
}
