package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "task-reminder-bridge/internal/common/errors"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewRedisStore(client, "sentNotifications:")

	ids, err := store.Load(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save(ctx, "7", []string{"3", "1"}))
	require.NoError(t, store.Save(ctx, "7", []string{"1", "2"}))

	ids, err = store.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, ids)

	assert.True(t, mr.Exists("sentNotifications:7"))
	members, err := mr.ZMembers("sentNotifications:7")
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestRedisStore_NXKeepsOriginalScore(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	store := NewRedisStore(client, "l:")

	store.now = func() time.Time { return time.UnixMicro(1000) }
	require.NoError(t, store.Save(ctx, "7", []string{"a"}))

	store.now = func() time.Time { return time.UnixMicro(5000) }
	require.NoError(t, store.Save(ctx, "7", []string{"a", "b"}))

	score, err := client.ZScore(ctx, "l:7", "a").Result()
	require.NoError(t, err)
	assert.Equal(t, float64(1000), score)
}

func TestRedisStore_EmptySaveIsNoop(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "l:")

	require.NoError(t, store.Save(context.Background(), "7", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Errors(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "l:")
	store.now = func() time.Time { return time.UnixMicro(100) }

	mock.ExpectZRange("l:7", 0, -1).SetErr(errors.New("connection refused"))
	_, err := store.Load(ctx, "7")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeLedgerLoadFailed))

	mock.ExpectZAddNX("l:7", redis.Z{Score: 100, Member: "1"}).SetErr(errors.New("READONLY"))
	err = store.Save(ctx, "7", []string{"1"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeLedgerSaveFailed))

	assert.NoError(t, mock.ExpectationsWereMet())
}
