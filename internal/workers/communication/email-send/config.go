package emailsend

import (
	"fmt"
	"time"

	"task-reminder-bridge/internal/common/config"
)

const (
	ProviderSES  = "ses"
	ProviderSMTP = "smtp"
	ProviderSNS  = "sns"
)

type Config struct {
	Provider        string        `mapstructure:"provider"`
	FromEmail       string        `mapstructure:"from_email"`
	FromName        string        `mapstructure:"from_name"`
	SubjectTemplate string        `mapstructure:"subject_template"`
	BodyTemplate    string        `mapstructure:"body_template"`
	Timeout         time.Duration `mapstructure:"timeout"`
	SMTPHost        string        `mapstructure:"smtp_host"`
	SMTPPort        int           `mapstructure:"smtp_port"`
	SMTPUsername    string        `mapstructure:"smtp_username"`
	SMTPPassword    string        `mapstructure:"smtp_password"`
	UseTLS          bool          `mapstructure:"use_tls"`
	SNSTopicARN     string        `mapstructure:"sns_topic_arn"`
}

func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderSES,
		FromName:        "Task Reminders",
		SubjectTemplate: "Reminder: {{task_title}}",
		BodyTemplate:    "Hi {{to_name}},\n\nYour task \"{{task_title}}\" is due ({{due_time}}).\n",
		Timeout:         15 * time.Second,
		SMTPPort:        587,
		UseTLS:          true,
	}
}

// FromAppConfig maps the email section of the application config.
func FromAppConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Provider = cfg.Email.Provider
	c.FromEmail = cfg.Email.FromEmail
	if cfg.Email.FromName != "" {
		c.FromName = cfg.Email.FromName
	}
	if cfg.Email.SubjectTemplate != "" {
		c.SubjectTemplate = cfg.Email.SubjectTemplate
	}
	if cfg.Email.BodyTemplate != "" {
		c.BodyTemplate = cfg.Email.BodyTemplate
	}
	if cfg.Bridge.SendTimeout > 0 {
		c.Timeout = config.GetDuration(cfg.Bridge.SendTimeout)
	}
	c.SMTPHost = cfg.Email.SMTP.Host
	if cfg.Email.SMTP.Port > 0 {
		c.SMTPPort = cfg.Email.SMTP.Port
	}
	c.SMTPUsername = cfg.Email.SMTP.Username
	c.SMTPPassword = cfg.Email.SMTP.Password
	c.UseTLS = cfg.Email.SMTP.UseTLS
	c.SNSTopicARN = cfg.Email.SNS.TopicARN
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.SubjectTemplate == "" || c.BodyTemplate == "" {
		return fmt.Errorf("subject and body templates are required")
	}

	switch c.Provider {
	case ProviderSES:
		if c.FromEmail == "" {
			return fmt.Errorf("from_email is required")
		}
	case ProviderSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("smtp_host is required")
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			return fmt.Errorf("smtp_port must be between 1 and 65535")
		}
		if c.FromEmail == "" {
			return fmt.Errorf("from_email is required")
		}
	case ProviderSNS:
		if c.SNSTopicARN == "" {
			return fmt.Errorf("sns_topic_arn is required")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}
