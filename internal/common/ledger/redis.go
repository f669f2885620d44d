package ledger

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"task-reminder-bridge/internal/common/errors"
)

// RedisStore keeps each user's ledger in a sorted set scored by record
// time, so ZADD NX gives an atomic, append-only merge.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisStore) Load(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.client.ZRange(ctx, r.key(userID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, errors.NewLedgerLoadFailedError(userID, err)
	}
	return ids, nil
}

func (r *RedisStore) Save(ctx context.Context, userID string, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}

	// microsecond base plus position keeps insertion order within one save
	base := float64(r.now().UnixMicro())
	members := make([]redis.Z, len(ids))
	for i, id := range ids {
		members[i] = redis.Z{Score: base + float64(i), Member: id}
	}

	if err := r.client.ZAddNX(ctx, r.key(userID), members...).Err(); err != nil {
		return errors.NewLedgerSaveFailedError(userID, err)
	}
	return nil
}
