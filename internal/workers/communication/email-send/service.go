package emailsend

import (
	"context"
	"fmt"
	"time"

	"task-reminder-bridge/internal/common/errors"
	"task-reminder-bridge/internal/common/logger"
)

// Service sends task reminder emails through the configured provider.
type Service struct {
	config   *Config
	logger   logger.Logger
	provider Provider
}

func NewService(deps ServiceDependencies, config *Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	var provider Provider
	switch config.Provider {
	case ProviderSES:
		if deps.SES == nil {
			return nil, fmt.Errorf("ses provider selected but no SES client given")
		}
		provider = &sesProvider{client: deps.SES}
	case ProviderSNS:
		if deps.SNS == nil {
			return nil, fmt.Errorf("sns provider selected but no SNS client given")
		}
		provider = &snsProvider{client: deps.SNS, topicARN: config.SNSTopicARN}
	case ProviderSMTP:
		provider = &smtpProvider{
			host:     config.SMTPHost,
			port:     config.SMTPPort,
			username: config.SMTPUsername,
			password: config.SMTPPassword,
			useTLS:   config.UseTLS,
			timeout:  config.Timeout,
		}
	}

	return &Service{
		config:   config,
		logger:   log.WithFields(map[string]interface{}{"provider": provider.Name()}),
		provider: provider,
	}, nil
}

// Provider returns the name of the active delivery provider.
func (s *Service) Provider() string {
	return s.provider.Name()
}

// SendTaskReminder validates the input, renders the templates and sends the
// reminder. Provider failures come back as a retryable EMAIL_SEND_FAILED.
func (s *Service) SendTaskReminder(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	params := input.params()
	msg := &Message{
		From:      s.config.FromEmail,
		FromName:  s.config.FromName,
		To:        input.ToEmail,
		ToName:    input.ToName,
		Subject:   renderTemplate(s.config.SubjectTemplate, params),
		Body:      renderTemplate(s.config.BodyTemplate, params),
		TaskTitle: input.TaskTitle,
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	messageID, err := s.provider.Send(ctx, msg)
	if err != nil {
		return nil, errors.NewEmailSendFailedError(s.provider.Name(), err)
	}

	s.logger.Debug("Reminder email sent", map[string]interface{}{
		"to":        input.ToEmail,
		"messageId": messageID,
	})

	return &Output{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: messageID,
		Provider:  s.provider.Name(),
		SentAt:    time.Now().UTC(),
	}, nil
}

// TestConnection checks the SMTP server is reachable. Other providers have
// nothing to dial ahead of time.
func (s *Service) TestConnection(ctx context.Context) error {
	p, ok := s.provider.(*smtpProvider)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	return p.testConnection(ctx)
}
