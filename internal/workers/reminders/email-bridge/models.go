package emailbridge

import (
	"context"
	"time"

	"task-reminder-bridge/internal/common/audit"
	"task-reminder-bridge/internal/common/ledger"
	"task-reminder-bridge/internal/common/logger"
	"task-reminder-bridge/internal/common/observability"
	"task-reminder-bridge/internal/common/todoapi"
	emailsend "task-reminder-bridge/internal/workers/communication/email-send"
)

// Sender delivers one reminder email. *emailsend.Service implements it.
type Sender interface {
	SendTaskReminder(ctx context.Context, input *emailsend.Input) (*emailsend.Output, error)
	Provider() string
}

// Dependencies are shared by every bridge a Manager starts.
type Dependencies struct {
	Source        todoapi.NotificationSource
	Sender        Sender
	Ledger        ledger.Store
	Audit         audit.Recorder
	Logger        logger.Logger
	Observability *observability.Observability

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// CycleResult summarises one poll cycle.
type CycleResult struct {
	CycleID            string        `json:"cycleId"`
	UserID             string        `json:"userId"`
	Result             string        `json:"result"`
	Fetched            int           `json:"fetched"`
	Sent               []string      `json:"sent,omitempty"`
	Failed             []string      `json:"failed,omitempty"`
	SkippedRead        int           `json:"skippedRead"`
	SkippedAlreadySent int           `json:"skippedAlreadySent"`
	SkippedInvalid     int           `json:"skippedInvalid"`
	StartedAt          time.Time     `json:"startedAt"`
	Duration           time.Duration `json:"duration"`
	Err                error         `json:"-"`
	SaveErr            error         `json:"-"`
}
