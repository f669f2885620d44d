package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_DecodeFeedEntry(t *testing.T) {
	raw := `{
		"notificationId": 42,
		"userId": 7,
		"taskId": 3,
		"message": "Task 'Buy milk' is due in 5 minutes",
		"type": "TASK_DUE_SOON",
		"isRead": false,
		"createdAt": "2026-10-17T09:15:30.123456"
	}`

	var n Notification
	require.NoError(t, json.Unmarshal([]byte(raw), &n))

	assert.Equal(t, NotificationID("42"), n.NotificationID)
	assert.Equal(t, UserID("7"), n.UserID)
	assert.Equal(t, TaskID("3"), n.TaskID)
	assert.Equal(t, NotificationTypeDueSoon, n.Type)
	assert.False(t, n.IsRead)
	assert.Equal(t, time.Date(2026, 10, 17, 9, 15, 30, 123456000, time.UTC), n.CreatedAt.Time)
}

func TestNotification_ReadFlagForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "isRead true", raw: `{"notificationId": 1, "message": "m", "isRead": true}`, want: true},
		{name: "isRead false", raw: `{"notificationId": 1, "message": "m", "isRead": false}`, want: false},
		{name: "read true", raw: `{"notificationId": 1, "message": "m", "read": true}`, want: true},
		{name: "read false", raw: `{"notificationId": 1, "message": "m", "read": false}`, want: false},
		{name: "isRead wins over read", raw: `{"notificationId": 1, "message": "m", "isRead": false, "read": true}`, want: false},
		{name: "missing means unread", raw: `{"notificationId": 1, "message": "m"}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notification{IsRead: !tt.want}
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &n))
			assert.Equal(t, tt.want, n.IsRead)
			assert.Equal(t, NotificationID("1"), n.NotificationID)
			assert.Equal(t, "m", n.Message)
		})
	}
}

func TestNotificationID_Forms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want NotificationID
	}{
		{name: "number", raw: `1`, want: "1"},
		{name: "large number", raw: `9007199254740993`, want: "9007199254740993"},
		{name: "string", raw: `"abc-1"`, want: "abc-1"},
		{name: "null", raw: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id NotificationID
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	var id NotificationID
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestTimestamp_Lenient(t *testing.T) {
	var withZone Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2026-10-17T09:15:30Z"`), &withZone))
	assert.Equal(t, 2026, withZone.Year())

	var garbage Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"yesterday"`), &garbage))
	assert.True(t, garbage.IsZero())

	var notString Timestamp
	require.NoError(t, json.Unmarshal([]byte(`12345`), &notString))
	assert.True(t, notString.IsZero())
}

func TestSession_RoundTrip(t *testing.T) {
	s := Session{
		User:        User{UserID: "7", Name: "Ada", Email: "ada@example.com"},
		ActivatedAt: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back Session
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "7", back.UserID())
	assert.Equal(t, s.User.Email, back.User.Email)
	assert.True(t, back.User.CreatedDate.IsZero())
	assert.True(t, s.ActivatedAt.Equal(back.ActivatedAt))
}
