package emailsend

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"task-reminder-bridge/internal/common/logger"
)

// Input carries the reminder template parameters.
type Input struct {
	ToEmail   string `json:"to_email"`
	ToName    string `json:"to_name"`
	TaskTitle string `json:"task_title"`
	DueTime   string `json:"due_time"`
}

// params returns the template placeholders for the input.
func (in *Input) params() map[string]interface{} {
	return map[string]interface{}{
		"to_email":   in.ToEmail,
		"to_name":    in.ToName,
		"task_title": in.TaskTitle,
		"due_time":   in.DueTime,
	}
}

type Output struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}

// Message is a rendered reminder ready for a provider.
type Message struct {
	From      string
	FromName  string
	To        string
	ToName    string
	Subject   string
	Body      string
	TaskTitle string
}

// SESService is the slice of the SES client the ses provider uses.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService is the slice of the SNS client the sns provider uses.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	SES    SESService
	SNS    SNSService
}
