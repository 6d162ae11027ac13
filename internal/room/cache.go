package room

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultCacheTTL bounds how long a room stays cached without being rewritten.
const DefaultCacheTTL = 10 * time.Minute

// cachedRepository keeps single-room lookups in Redis.
// Only room metadata is cached; bookings are always read from the database.
type cachedRepository struct {
	Repository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedRepository wraps repo with a read-through Redis cache for GetByID.
// Cache failures fall back to repo.
func NewCachedRepository(repo Repository, client *redis.Client, ttl time.Duration) Repository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &cachedRepository{Repository: repo, client: client, ttl: ttl}
}

// errStaleRead marks a database read that lost a race with Update or Delete.
var errStaleRead = errors.New("room changed while it was being cached")

func cacheKey(id string) string {
	return "room:" + id
}

// generationKey counts writes to a room. A lookup only fills the cache when the
// count is unchanged since before it read the database.
func generationKey(id string) string {
	return "room:" + id + ":gen"
}

func (r *cachedRepository) generation(ctx context.Context, id string) int64 {
	gen, err := r.client.Get(ctx, generationKey(id)).Int64()
	if err != nil {
		return 0
	}
	return gen
}

func (r *cachedRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	raw, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var rm Room
		if err := json.Unmarshal(raw, &rm); err == nil {
			return &rm, nil
		}
		zap.L().Warn("discarding corrupt room cache entry", zap.String("room_id", id))
	} else if !errors.Is(err, redis.Nil) {
		zap.L().Warn("room cache read failed", zap.String("room_id", id), zap.Error(err))
	}

	gen := r.generation(ctx, id)
	rm, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, rm, gen)
	return rm, nil
}

func (r *cachedRepository) Update(ctx context.Context, rm *Room) error {
	if err := r.Repository.Update(ctx, rm); err != nil {
		return err
	}
	r.evict(ctx, rm.ID)
	return nil
}

func (r *cachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

// store caches rm unless the room was written after generation gen was read.
func (r *cachedRepository) store(ctx context.Context, rm *Room, gen int64) {
	raw, err := json.Marshal(rm)
	if err != nil {
		return
	}

	genKey := generationKey(rm.ID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(rm.ID), raw, r.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil, errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
	default:
		zap.L().Warn("room cache write failed", zap.String("room_id", rm.ID), zap.Error(err))
	}
}

// evict bumps the room's generation before dropping the cached copy, so lookups
// that read the old row cannot write it back.
func (r *cachedRepository) evict(ctx context.Context, id string) {
	if err := r.client.Incr(ctx, generationKey(id)).Err(); err != nil {
		zap.L().Warn("room cache generation bump failed", zap.String("room_id", id), zap.Error(err))
	}
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		zap.L().Warn("room cache evict failed", zap.String("room_id", id), zap.Error(err))
	}
}
