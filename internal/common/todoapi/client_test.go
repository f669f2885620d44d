package todoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-reminder-bridge/internal/common/errors"
	httpclient "task-reminder-bridge/internal/common/http"
	"task-reminder-bridge/internal/common/logger"
	"task-reminder-bridge/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(httpclient.Options{
		BaseURL:   server.URL + "/api",
		Timeout:   2 * time.Second,
		UserAgent: "test",
	}, logger.NewTestLogger(t))
}

func TestListNotifications(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/notifications", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("userId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"notificationId": 1, "message": "Task 'A' is due now!", "isRead": false, "createdAt": "2026-10-17T09:00:00"},
			{"notificationId": 2, "message": "Task 'B' is due now!", "isRead": true, "createdAt": "2026-10-17T09:00:00"}
		]`))
	})

	feed, err := client.ListNotifications(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, models.NotificationID("1"), feed[0].NotificationID)
	assert.False(t, feed[0].IsRead)
	assert.Equal(t, models.NotificationID("2"), feed[1].NotificationID)
	assert.True(t, feed[1].IsRead)
}

func TestListNotifications_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListNotifications(context.Background(), "7")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotificationFetchFailed))
	assert.True(t, errors.IsRetryable(err))
}

func TestListNotifications_MalformedFeed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "object instead of array", body: `{"notificationId": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ListNotifications(context.Background(), "7")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeNotificationParseFailed), err.Error())
		})
	}
}

func TestListNotifications_ReadFlagSpelledRead(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"notificationId": 1, "message": "Task 'A' is due now!", "read": false},
			{"notificationId": 2, "message": "Task 'B' is due now!", "read": true},
			{"notificationId": 3, "message": "Task 'C' is due now!"}
		]`))
	})

	feed, err := client.ListNotifications(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.False(t, feed[0].IsRead)
	assert.True(t, feed[1].IsRead)
	assert.False(t, feed[2].IsRead)
}

func TestDecodeFeed_SkipsInvalidEntries(t *testing.T) {
	body := []byte(`[
		{"notificationId": 1, "message": "Task 'A' is due now!", "isRead": false},
		{"notificationId": 2, "message": null, "isRead": false},
		{"notificationId": 3, "message": "Task 'C' is due now!", "isRead": "no"},
		{"notificationId": "   ", "message": "Task 'D' is due now!", "isRead": false},
		{"notificationId": "", "message": "Task 'E' is due now!", "isRead": false},
		{"message": "Task 'F' is due now!", "isRead": false},
		{"notificationId": true, "message": "Task 'G' is due now!", "isRead": false},
		{"notificationId": "h-8", "message": "Task 'H' is due now!", "isRead": false}
	]`)

	feed, skipped, err := DecodeFeed(body)
	require.NoError(t, err)

	require.Len(t, feed, 2)
	assert.Equal(t, models.NotificationID("1"), feed[0].NotificationID)
	assert.Equal(t, models.NotificationID("h-8"), feed[1].NotificationID)

	var indexes []int
	for _, s := range skipped {
		indexes = append(indexes, s.Index)
		assert.NotEmpty(t, s.Reason)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, indexes)
}

func TestDecodeFeed_Empty(t *testing.T) {
	feed, skipped, err := DecodeFeed([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, feed)
	assert.Empty(t, skipped)
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var req models.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"userId": 7, "name": "Ada", "email": "ada@example.com", "createdDate": "2026-01-01T10:00:00"}`))
	})

	user, err := client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.UserID("7"), user.UserID)
	assert.Equal(t, "Ada", user.Name)

	_, err = client.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthenticationFailed))
	assert.False(t, errors.IsRetryable(err))
}

func TestUnreadCountMarkAsReadDelete(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.URL.Path == "/api/notifications/unread-count":
			_, _ = w.Write([]byte(`3`))
		case r.URL.Path == "/api/notifications/404/read":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	count, err := client.UnreadCount(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, client.MarkAsRead(context.Background(), "12"))
	require.NoError(t, client.DeleteNotification(context.Background(), "12"))

	err = client.MarkAsRead(context.Background(), "404")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAPIRequestFailed))
	assert.False(t, errors.IsRetryable(err))

	assert.Equal(t, []string{
		"GET /api/notifications/unread-count",
		"PUT /api/notifications/12/read",
		"DELETE /api/notifications/12",
		"PUT /api/notifications/404/read",
	}, calls)
}
