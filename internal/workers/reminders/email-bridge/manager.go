package emailbridge

import (
	"context"
	"sort"
	"strings"
	"sync"

	"task-reminder-bridge/internal/common/errors"
	"task-reminder-bridge/internal/common/logger"
	"task-reminder-bridge/internal/common/metrics"
	"task-reminder-bridge/internal/common/session"
	"task-reminder-bridge/internal/common/todoapi"
	"task-reminder-bridge/internal/models"
)

// Manager owns one Bridge per active session.
type Manager struct {
	config   *Config
	deps     Dependencies
	sessions session.Store
	auth     todoapi.Authenticator
	logger   logger.Logger

	mu      sync.Mutex
	bridges map[string]*Bridge
	records map[string]*models.Session
}

// NewManager wires a manager. auth may be nil when logins go elsewhere.
func NewManager(config *Config, deps Dependencies, sessions session.Store, auth todoapi.Authenticator) *Manager {
	deps = deps.withDefaults()
	return &Manager{
		config:   config,
		deps:     deps,
		sessions: sessions,
		auth:     auth,
		logger:   deps.Logger.WithFields(map[string]interface{}{"component": "session-manager"}),
		bridges:  make(map[string]*Bridge),
		records:  make(map[string]*models.Session),
	}
}

// Login authenticates against the to-do API and activates the user.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if m.auth == nil {
		return nil, errors.NewAuthenticationFailedError("no authenticator configured")
	}
	user, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.Activate(ctx, *user)
}

// Activate persists the session and starts its bridge. Activating a user
// that is already running refreshes the stored record only.
func (m *Manager) Activate(ctx context.Context, user models.User) (*models.Session, error) {
	userID := strings.TrimSpace(user.UserID.String())
	if userID == "" {
		return nil, errors.NewSessionInvalidError("user has no id")
	}
	if strings.TrimSpace(user.Email) == "" {
		return nil, errors.NewSessionInvalidError("user has no email")
	}

	rec := &models.Session{User: user, ActivatedAt: m.deps.Clock().UTC()}
	if err := m.sessions.Save(ctx, rec); err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.startLocked(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *Manager) startLocked(rec *models.Session) error {
	userID := rec.UserID()
	if b, ok := m.bridges[userID]; ok {
		b.SetUser(rec.User)
		m.records[userID] = rec
		return nil
	}

	b, err := NewBridge(m.config, m.deps, rec.User)
	if err != nil {
		return err
	}
	if err := b.Start(); err != nil {
		return err
	}
	m.bridges[userID] = b
	m.records[userID] = rec
	metrics.ActiveSessions.Set(float64(len(m.bridges)))

	m.logger.Info("Session activated", map[string]interface{}{"userId": userID})
	return nil
}

// Deactivate stops the user's bridge and forgets the session.
func (m *Manager) Deactivate(ctx context.Context, userID string) error {
	m.mu.Lock()
	b, ok := m.bridges[userID]
	if ok {
		delete(m.bridges, userID)
		delete(m.records, userID)
		metrics.ActiveSessions.Set(float64(len(m.bridges)))
	}
	m.mu.Unlock()

	if !ok {
		return errors.NewSessionNotFoundError(userID)
	}

	b.Stop()
	if err := m.sessions.Delete(ctx, userID); err != nil {
		return errors.NewSessionStoreFailedError(err)
	}

	m.logger.Info("Session deactivated", map[string]interface{}{"userId": userID})
	return nil
}

// Restore starts a bridge for every stored session and returns how many
// were started.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	stored, err := m.sessions.List(ctx)
	if err != nil {
		return 0, errors.NewSessionStoreFailedError(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	started := 0
	for _, rec := range stored {
		if _, ok := m.bridges[rec.UserID()]; ok {
			continue
		}
		if err := m.startLocked(rec); err != nil {
			m.logger.Warn("Failed to restore session", map[string]interface{}{
				"userId": rec.UserID(),
				"error":  err.Error(),
			})
			continue
		}
		started++
	}

	m.logger.Info("Sessions restored", map[string]interface{}{"count": started})
	return started, nil
}

// Trigger requests an immediate cycle for userID.
func (m *Manager) Trigger(userID string) error {
	m.mu.Lock()
	b, ok := m.bridges[userID]
	m.mu.Unlock()
	if !ok || !b.Trigger() {
		return errors.NewSessionNotFoundError(userID)
	}
	return nil
}

// Sessions lists the active sessions ordered by user id.
func (m *Manager) Sessions() []models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Session, 0, len(m.records))
	for id, rec := range m.records {
		s := *rec
		if b, ok := m.bridges[id]; ok {
			s.User = b.User()
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID() < out[j].UserID() })
	return out
}

// Bridge returns the running bridge for userID.
func (m *Manager) Bridge(userID string) (*Bridge, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bridges[userID]
	return b, ok
}

// Shutdown stops every bridge but keeps the stored sessions so the next
// start can restore them.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	bridges := make([]*Bridge, 0, len(m.bridges))
	for _, b := range m.bridges {
		bridges = append(bridges, b)
	}
	m.bridges = make(map[string]*Bridge)
	m.records = make(map[string]*models.Session)
	metrics.ActiveSessions.Set(0)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, b := range bridges {
		wg.Add(1)
		go func(b *Bridge) {
			defer wg.Done()
			b.Stop()
		}(b)
	}
	wg.Wait()
	m.logger.Info("All bridges stopped", map[string]interface{}{"count": len(bridges)})
}
