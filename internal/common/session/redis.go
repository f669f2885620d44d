package session

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/redis/go-redis/v9"

	"task-reminder-bridge/internal/common/errors"
	"task-reminder-bridge/internal/models"
)

// RedisStore keeps each session as a JSON string under <prefix><userID>
// and tracks user ids in the <prefix>index set.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisStore) indexKey() string {
	return r.prefix + "index"
}

func (r *RedisStore) Save(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.NewSessionStoreFailedError(err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(s.UserID()), data, 0)
		pipe.SAdd(ctx, r.indexKey(), s.UserID())
		return nil
	})
	if err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, userID string) (*models.Session, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, errors.NewSessionNotFoundError(userID)
	}
	if err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}
	return &s, nil
}

// List returns every indexed session. Index entries whose record has gone
// missing are skipped.
func (r *RedisStore) List(ctx context.Context) ([]*models.Session, error) {
	userIDs, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}
	sort.Strings(userIDs)

	out := make([]*models.Session, 0, len(userIDs))
	for _, userID := range userIDs {
		s, err := r.Load(ctx, userID)
		if errors.HasCode(err, errors.ErrCodeSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(userID))
		pipe.SRem(ctx, r.indexKey(), userID)
		return nil
	})
	if err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}
