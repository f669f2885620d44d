// Package session persists the users for whom a reminder bridge is running,
// so a restarted service picks them up again.
package session

import (
	"context"

	"task-reminder-bridge/internal/models"
)

// Store persists active sessions keyed by user id.
type Store interface {
	Save(ctx context.Context, s *models.Session) error
	Load(ctx context.Context, userID string) (*models.Session, error)
	List(ctx context.Context) ([]*models.Session, error)
	Delete(ctx context.Context, userID string) error
}
