package session

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
	"task-reminder-bridge/internal/models"
)

func newSession(id, name string) *models.Session {
	return &models.Session{
		User: models.User{
			UserID: models.UserID(id),
			Name:   name,
			Email:  name + "@example.com",
		},
		ActivatedAt: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
	}
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Load(ctx, "7")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))

	require.NoError(t, store.Save(ctx, newSession("7", "ada")))
	require.NoError(t, store.Save(ctx, newSession("3", "bob")))

	s, err := store.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", s.User.Email)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "3", all[0].UserID())
	assert.Equal(t, "7", all[1].UserID())

	// saving again refreshes the record without duplicating it
	require.NoError(t, store.Save(ctx, newSession("7", "ada2")))
	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Delete(ctx, "7"))
	_, err = store.Load(ctx, "7")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))

	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr, client := setupRedis(t)
	exerciseStore(t, NewRedisStore(client, "currentUser:"))

	assert.True(t, mr.Exists("currentUser:3"))
	assert.False(t, mr.Exists("currentUser:7"))
}

func TestRedisStore_ListSkipsDanglingIndexEntries(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, "s:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession("1", "ada")))
	_, err := mr.SetAdd("s:index", "99")
	require.NoError(t, err)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "1", all[0].UserID())
}

func TestRedisStore_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "s:")
	ctx := context.Background()

	mock.ExpectGet("s:7").SetErr(errors.New("connection refused"))
	_, err := store.Load(ctx, "7")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionStoreFailed))

	mock.ExpectSMembers("s:index").SetErr(errors.New("connection refused"))
	_, err = store.List(ctx)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionStoreFailed))

	mock.ExpectGet("s:8").SetVal("{not json")
	_, err = store.Load(ctx, "8")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionStoreFailed))

	assert.NoError(t, mock.ExpectationsWereMet())
}
