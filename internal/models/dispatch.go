package models

import "time"

const (
	DispatchStatusSent   = "sent"
	DispatchStatusFailed = "failed"
)

// DispatchRecord is one reminder email attempt.
type DispatchRecord struct {
	CycleID        string    `json:"cycleId"`
	UserID         string    `json:"userId"`
	NotificationID string    `json:"notificationId"`
	TaskTitle      string    `json:"taskTitle"`
	DueTime        string    `json:"dueTime"`
	Recipient      string    `json:"recipient"`
	Provider       string    `json:"provider,omitempty"`
	MessageID      string    `json:"messageId,omitempty"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	AttemptedAt    time.Time `json:"attemptedAt"`
}
