package emailbridge

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"task-reminder-bridge/internal/common/errors"
	"task-reminder-bridge/internal/common/ledger"
	"task-reminder-bridge/internal/common/metrics"
	"task-reminder-bridge/internal/models"
	emailsend "task-reminder-bridge/internal/workers/communication/email-send"
)

// RunCycle reconciles the user's notification feed against the ledger and
// emails every unread notification that has not been emailed yet.
//
// A fetch or ledger load failure ends the cycle with nothing sent. A failed
// send leaves its id out of the ledger so the next cycle tries again.
func (b *Bridge) RunCycle(ctx context.Context) *CycleResult {
	user := b.User()
	userID := user.UserID.String()
	res := &CycleResult{
		CycleID:   uuid.New().String(),
		UserID:    userID,
		StartedAt: b.deps.Clock(),
	}
	log := b.logger.WithFields(map[string]interface{}{"cycleId": res.CycleID})
	errs := errors.NewErrorHandler(log)

	defer func() {
		res.Duration = b.deps.Clock().Sub(res.StartedAt)
		metrics.ReminderCycles.WithLabelValues(res.Result).Inc()
		metrics.ReminderCycleDuration.WithLabelValues(res.Result).Observe(res.Duration.Seconds())
		b.deps.Observability.RecordCycle(ctx, res.Duration, res.Result)
		b.setLastResult(res)
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, b.config.FetchTimeout)
	feed, err := b.deps.Source.ListNotifications(fetchCtx, userID)
	cancel()
	if err != nil {
		res.Result = metrics.CycleFetchFailed
		res.Err = errs.Handle("Notification fetch failed, skipping cycle", err, nil)
		return res
	}
	res.Fetched = len(feed)

	ids, err := b.deps.Ledger.Load(ctx, userID)
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeLedgerLoadFailed) {
			err = errors.NewLedgerLoadFailedError(userID, err)
		}
		res.Result = metrics.CycleLedgerFailed
		res.Err = errs.Handle("Ledger load failed, skipping cycle", err, nil)
		return res
	}
	sent := ledger.NewSet(ids)

	for _, n := range feed {
		id := n.NotificationID.String()
		if strings.TrimSpace(id) == "" {
			// the ledger cannot hold it, so it would be resent every cycle
			res.SkippedInvalid++
			metrics.NotificationsSkipped.WithLabelValues(metrics.SkipInvalidID).Inc()
			log.Warn("Skipping notification without id", map[string]interface{}{"message": n.Message})
			continue
		}
		if n.IsRead {
			res.SkippedRead++
			metrics.NotificationsSkipped.WithLabelValues(metrics.SkipRead).Inc()
			continue
		}
		if sent.Contains(id) {
			res.SkippedAlreadySent++
			metrics.NotificationsSkipped.WithLabelValues(metrics.SkipAlreadySent).Inc()
			continue
		}

		if err := b.send(ctx, res.CycleID, user, n); err != nil {
			res.Failed = append(res.Failed, id)
			errs.Handle("Reminder email failed", err, map[string]interface{}{"notificationId": id})
			continue
		}
		sent.Add(id)
		res.Sent = append(res.Sent, id)
	}

	res.Result = metrics.CycleOK

	if len(res.Sent) > 0 {
		if err := b.deps.Ledger.Save(ctx, userID, res.Sent); err != nil {
			if !errors.HasCode(err, errors.ErrCodeLedgerSaveFailed) {
				err = errors.NewLedgerSaveFailedError(userID, err)
			}
			metrics.LedgerSaveFailures.Inc()
			res.SaveErr = errs.Handle("Ledger save failed, sent ids will be retried", err, map[string]interface{}{
				"ids": res.Sent,
			})
		}
	}

	log.Info("Reminder cycle finished", map[string]interface{}{
		"fetched":            res.Fetched,
		"sent":               len(res.Sent),
		"failed":             len(res.Failed),
		"skippedRead":        res.SkippedRead,
		"skippedAlreadySent": res.SkippedAlreadySent,
		"skippedInvalid":     res.SkippedInvalid,
	})
	return res
}

func (b *Bridge) send(ctx context.Context, cycleID string, user models.User, n models.Notification) error {
	provider := b.deps.Sender.Provider()
	input := &emailsend.Input{
		ToEmail:   user.Email,
		ToName:    RecipientName(user),
		TaskTitle: TaskTitle(n),
		DueTime:   FormatDueTime(b.deps.Clock(), b.config.Location),
	}

	rec := models.DispatchRecord{
		CycleID:        cycleID,
		UserID:         user.UserID.String(),
		NotificationID: n.NotificationID.String(),
		TaskTitle:      input.TaskTitle,
		DueTime:        input.DueTime,
		Recipient:      input.ToEmail,
		Provider:       provider,
		AttemptedAt:    b.deps.Clock().UTC(),
	}

	out, err := b.deps.Sender.SendTaskReminder(ctx, input)
	if err != nil {
		code := errors.Normalize(err).Code
		metrics.RemindersFailed.WithLabelValues(provider, string(code)).Inc()
		b.deps.Observability.RecordSend(ctx, provider, models.DispatchStatusFailed)
		rec.Status = models.DispatchStatusFailed
		rec.Error = err.Error()
		b.audit(ctx, rec)
		return err
	}

	metrics.RemindersSent.WithLabelValues(provider).Inc()
	b.deps.Observability.RecordSend(ctx, provider, models.DispatchStatusSent)
	rec.Status = models.DispatchStatusSent
	rec.MessageID = out.MessageID
	b.audit(ctx, rec)
	return nil
}

func (b *Bridge) audit(ctx context.Context, rec models.DispatchRecord) {
	ctx, cancel := context.WithTimeout(ctx, b.config.AuditTimeout)
	defer cancel()
	if err := b.deps.Audit.Record(ctx, rec); err != nil {
		b.logger.Debug("Dispatch audit failed", map[string]interface{}{
			"notificationId": rec.NotificationID,
			"error":          err.Error(),
		})
	}
}
