// internal/workers/reminders/email-bridge/bridge.go
package emailbridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"task-reminder-bridge/internal/common/logger"
	"task-reminder-bridge/internal/models"
)

// Bridge polls the notification feed of one user and emails new reminders.
// All cycles of a bridge run on its own goroutine, so they never overlap.
type Bridge struct {
	config *Config
	deps   Dependencies
	logger logger.Logger

	mu      sync.RWMutex
	user    models.User
	running bool
	last    *CycleResult

	stopCh    chan struct{}
	doneCh    chan struct{}
	triggerCh chan struct{}
}

func NewBridge(config *Config, deps Dependencies, user models.User) (*Bridge, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bridge config: %w", err)
	}
	deps = deps.withDefaults()
	if deps.Source == nil || deps.Sender == nil || deps.Ledger == nil {
		return nil, fmt.Errorf("bridge needs a notification source, a sender and a ledger")
	}
	return &Bridge{
		config: config,
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"userId": user.UserID.String()}),
		user:   user,
	}, nil
}

// Start runs a cycle immediately and then one per poll interval until Stop.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return fmt.Errorf("bridge for user %s already running", b.user.UserID)
	}
	b.running = true
	b.stopCh = make(chan struct{})
	b.doneCh = make(chan struct{})
	b.triggerCh = make(chan struct{}, 1)

	go b.loop(b.stopCh, b.doneCh, b.triggerCh)

	b.logger.Info("Bridge started", map[string]interface{}{
		"pollInterval": b.config.PollInterval.String(),
	})
	return nil
}

// Stop ends the loop and waits for a cycle in progress to finish. Sends
// already under way are not cancelled.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.stopCh)
	done := b.doneCh
	b.mu.Unlock()

	<-done
	b.logger.Info("Bridge stopped", nil)
}

// Trigger asks for an extra cycle as soon as the current one is done.
// Requests made while one is already pending are merged into it.
func (b *Bridge) Trigger() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.running {
		return false
	}
	select {
	case b.triggerCh <- struct{}{}:
	default:
	}
	return true
}

func (b *Bridge) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

// User returns the user the bridge sends to.
func (b *Bridge) User() models.User {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.user
}

// SetUser refreshes the recipient details, used when a session is
// re-activated. It takes effect from the next cycle.
func (b *Bridge) SetUser(user models.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.user = user
}

// LastResult returns the outcome of the most recent cycle, or nil.
func (b *Bridge) LastResult() *CycleResult {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

func (b *Bridge) setLastResult(res *CycleResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = res
}

func (b *Bridge) loop(stopCh, doneCh chan struct{}, triggerCh chan struct{}) {
	defer close(doneCh)

	// Cycles outlive Stop: it only prevents the next one.
	ctx := context.Background()

	b.RunCycle(ctx)

	ticker := time.NewTicker(b.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		case <-triggerCh:
		}

		select {
		case <-stopCh:
			return
		default:
		}
		b.RunCycle(ctx)
	}
}
