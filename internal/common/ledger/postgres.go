package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"task-reminder-bridge/internal/common/errors"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS sent_notifications (
	seq             BIGSERIAL,
	user_id         TEXT        NOT NULL,
	notification_id TEXT        NOT NULL,
	sent_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, notification_id)
)`

	selectIDsSQL = `SELECT notification_id FROM sent_notifications WHERE user_id = $1 ORDER BY seq`

	insertIDSQL = `INSERT INTO sent_notifications (user_id, notification_id) VALUES ($1, $2) ON CONFLICT (user_id, notification_id) DO NOTHING`
)

// PostgresStore keeps ledgers in the sent_notifications table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the ledger table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create sent_notifications table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, userID string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, selectIDsSQL, userID)
	if err != nil {
		return nil, errors.NewLedgerLoadFailedError(userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewLedgerLoadFailedError(userID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewLedgerLoadFailedError(userID, err)
	}
	return ids, nil
}

func (p *PostgresStore) Save(ctx context.Context, userID string, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewLedgerSaveFailedError(userID, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertIDSQL)
	if err != nil {
		return errors.NewLedgerSaveFailedError(userID, err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, userID, id); err != nil {
			return errors.NewLedgerSaveFailedError(userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewLedgerSaveFailedError(userID, err)
	}
	return nil
}
