package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Notification types emitted by the to-do API scheduler.
const (
	NotificationTypeDueSoon  = "TASK_DUE_SOON"
	NotificationTypeOverdue  = "TASK_OVERDUE"
	NotificationTypeReminder = "REMINDER"
)

// NotificationID is an opaque notification identifier. The API emits a JSON
// number; strings are accepted too. It is always kept in its string form.
type NotificationID string

func (id *NotificationID) UnmarshalJSON(data []byte) error {
	s, err := decodeID(data)
	if err != nil {
		return fmt.Errorf("notificationId: %w", err)
	}
	*id = NotificationID(s)
	return nil
}

func (id NotificationID) String() string { return string(id) }

// Notification is one entry of the remote notification feed.
type Notification struct {
	NotificationID NotificationID `json:"notificationId"`
	UserID         UserID         `json:"userId,omitempty"`
	TaskID         TaskID         `json:"taskId,omitempty"`
	Message        string         `json:"message"`
	Type           string         `json:"type,omitempty"`
	IsRead         bool           `json:"isRead"`
	CreatedAt      Timestamp      `json:"createdAt"`

	// TaskTitle is not sent by the current API. When present it wins over
	// the title parsed out of Message.
	TaskTitle string `json:"taskTitle,omitempty"`
}

// UnmarshalJSON accepts the read flag as either "isRead" or "read"; the
// backend entity serialises its boolean isRead getter as "read". A missing
// flag means unread.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	aux := struct {
		*plain
		IsRead *bool `json:"isRead"`
		Read   *bool `json:"read"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch {
	case aux.IsRead != nil:
		n.IsRead = *aux.IsRead
	case aux.Read != nil:
		n.IsRead = *aux.Read
	default:
		n.IsRead = false
	}
	return nil
}

// TaskID identifies the task a notification is about.
type TaskID string

func (id *TaskID) UnmarshalJSON(data []byte) error {
	s, err := decodeID(data)
	if err != nil {
		return fmt.Errorf("taskId: %w", err)
	}
	*id = TaskID(s)
	return nil
}

func (id TaskID) String() string { return string(id) }

// Timestamp decodes ISO-8601 values with or without a zone. Values it cannot
// parse decode to the zero time rather than failing the whole feed.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			ts.Time = t
			return nil
		}
	}
	ts.Time = time.Time{}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339Nano))
}

// decodeID accepts a JSON number or string and returns it as a string.
func decodeID(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("expected number or string, got %s", string(data))
	}
	return n.String(), nil
}
