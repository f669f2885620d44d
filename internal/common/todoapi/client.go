// internal/common/todoapi/client.go
package todoapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"task-reminder-bridge/internal/common/errors"
	httpclient "task-reminder-bridge/internal/common/http"
	"task-reminder-bridge/internal/common/logger"
	"task-reminder-bridge/internal/common/validation"
	"task-reminder-bridge/internal/models"
)

// Client talks to the remote to-do REST API.
type Client struct {
	http   *httpclient.Client
	logger logger.Logger
}

// NotificationSource is the part of the API the bridge polls.
type NotificationSource interface {
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
}

// Authenticator logs a user in against the API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
}

func NewClient(opts httpclient.Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		http:   httpclient.NewClient(opts, log),
		logger: log,
	}
}

// Login authenticates with email and password and returns the user record.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := c.http.R(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.LoginRequest{Email: email, Password: password}).
		Post("/auth/login")

	if err := httpclient.CheckResponse(resp, err); err != nil {
		var rerr *httpclient.ResponseError
		if stderrors.As(err, &rerr) && (rerr.StatusCode == http.StatusUnauthorized || rerr.StatusCode == http.StatusForbidden) {
			return nil, errors.NewAuthenticationFailedError(rerr.Error())
		}
		return nil, mapError(http.MethodPost, "/auth/login", err)
	}

	var user models.User
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, errors.NewAuthenticationFailedError(fmt.Sprintf("invalid login response: %v", err))
	}
	if user.UserID == "" {
		return nil, errors.NewAuthenticationFailedError("login response carried no userId")
	}

	c.logger.Debug("Login successful", map[string]interface{}{
		"userId": user.UserID.String(),
	})
	return &user, nil
}

// ListNotifications returns the notification feed for userID in the order
// the API returned it. Invalid entries are logged and left out.
func (c *Client) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	resp, err := c.http.R(ctx).
		SetQueryParam("userId", userID).
		Get("/notifications")

	if err := httpclient.CheckResponse(resp, err); err != nil {
		return nil, errors.NewNotificationFetchFailedError(userID, err)
	}

	feed, skipped, err := DecodeFeed(resp.Body())
	if err != nil {
		return nil, err
	}
	for _, entry := range skipped {
		c.logger.Warn("Skipping invalid notification", map[string]interface{}{
			"userId": userID,
			"index":  entry.Index,
			"reason": entry.Reason,
		})
	}
	return feed, nil
}

// UnreadCount returns the number of unread notifications for userID.
func (c *Client) UnreadCount(ctx context.Context, userID string) (int64, error) {
	resp, err := c.http.R(ctx).
		SetQueryParam("userId", userID).
		Get("/notifications/unread-count")

	if err := httpclient.CheckResponse(resp, err); err != nil {
		return 0, mapError(http.MethodGet, "/notifications/unread-count", err)
	}

	var count int64
	if err := json.Unmarshal(resp.Body(), &count); err != nil {
		return 0, errors.NewNotificationParseFailedError(fmt.Sprintf("unread count: %v", err))
	}
	return count, nil
}

// MarkAsRead flags a notification as read.
func (c *Client) MarkAsRead(ctx context.Context, notificationID string) error {
	path := "/notifications/{id}/read"
	resp, err := c.http.R(ctx).
		SetPathParam("id", notificationID).
		Put(path)

	if err := httpclient.CheckResponse(resp, err); err != nil {
		return mapError(http.MethodPut, path, err)
	}
	return nil
}

// DeleteNotification removes a notification.
func (c *Client) DeleteNotification(ctx context.Context, notificationID string) error {
	path := "/notifications/{id}"
	resp, err := c.http.R(ctx).
		SetPathParam("id", notificationID).
		Delete(path)

	if err := httpclient.CheckResponse(resp, err); err != nil {
		return mapError(http.MethodDelete, path, err)
	}
	return nil
}

func mapError(method, path string, err error) error {
	var rerr *httpclient.ResponseError
	if stderrors.As(err, &rerr) {
		return errors.NewAPIRequestFailedError(method, path, rerr.StatusCode, err)
	}
	return errors.NewAPIRequestFailedError(method, path, 0, err)
}

// nonBlank rejects ids made only of whitespace; they would decode to an empty
// id that the ledger cannot record.
const nonBlank = `\S`

var entryValidator = validation.MustCompile(validation.JSONSchema{
	Type:     "object",
	Required: []string{"notificationId", "message"},
	Properties: map[string]validation.Property{
		"notificationId": {AnyOf: []validation.Property{{Type: "number"}, {Type: "string", Pattern: validation.StringPtr(nonBlank)}}},
		"message":        {Type: "string"},
		"isRead":         {Type: "boolean"},
		"read":           {Type: "boolean"},
		"taskTitle":      {Type: "string"},
	},
})

// SkippedEntry is a feed entry DecodeFeed left out.
type SkippedEntry struct {
	Index  int
	Reason string
}

// DecodeFeed decodes a raw notification feed. The body must be a JSON array;
// entries that fail validation are skipped and reported so one bad record
// does not hold back the rest.
func DecodeFeed(body []byte) ([]models.Notification, []SkippedEntry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, errors.NewNotificationParseFailedError(fmt.Sprintf("feed is not a JSON array: %v", err))
	}

	feed := make([]models.Notification, 0, len(raw))
	var skipped []SkippedEntry
	for i, entry := range raw {
		result, err := entryValidator.ValidateJSON(entry)
		if err != nil {
			skipped = append(skipped, SkippedEntry{Index: i, Reason: err.Error()})
			continue
		}
		if !result.Valid {
			skipped = append(skipped, SkippedEntry{Index: i, Reason: result.Summary()})
			continue
		}

		var n models.Notification
		if err := json.Unmarshal(entry, &n); err != nil {
			skipped = append(skipped, SkippedEntry{Index: i, Reason: err.Error()})
			continue
		}
		if n.NotificationID == "" {
			skipped = append(skipped, SkippedEntry{Index: i, Reason: "notificationId is empty"})
			continue
		}
		feed = append(feed, n)
	}
	return feed, skipped, nil
}
