package emailsend

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

// Provider delivers one rendered reminder and returns its message id.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *Message) (string, error)
}

// ==========================
// SES
// ==========================

type sesProvider struct {
	client SESService
}

func (p *sesProvider) Name() string { return ProviderSES }

func (p *sesProvider) Send(ctx context.Context, msg *Message) (string, error) {
	out, err := p.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(formatAddress(msg.FromName, msg.From)),
		Destination: &sestypes.Destination{
			ToAddresses: []string{formatAddress(msg.ToName, msg.To)},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				Html: &sestypes.Content{Data: aws.String(htmlBody(msg.Body)), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

// ==========================
// SNS
// ==========================

// snsMaxSubject is the SNS limit on the email subject line.
const snsMaxSubject = 100

const snsFallbackSubject = "Task reminder"

// snsSubject reduces s to what SNS accepts as a subject: printable ASCII on
// one line, at most snsMaxSubject bytes.
func snsSubject(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\t' || r == '\r' || r == '\n':
			b.WriteByte(' ')
		case r >= 0x20 && r <= 0x7e:
			b.WriteRune(r)
		}
	}
	subject := strings.TrimSpace(b.String())
	if len(subject) > snsMaxSubject {
		subject = strings.TrimSpace(subject[:snsMaxSubject])
	}
	if subject == "" {
		return snsFallbackSubject
	}
	return subject
}

type snsProvider struct {
	client   SNSService
	topicARN string
}

func (p *snsProvider) Name() string { return ProviderSNS }

// Send publishes to the reminder topic. Email subscriptions deliver it;
// filter policies can route on the to_email attribute.
func (p *snsProvider) Send(ctx context.Context, msg *Message) (string, error) {
	subject := snsSubject(msg.Subject)

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(msg.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"to_email": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.To),
			},
			"task_title": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.TaskTitle),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

// ==========================
// SMTP
// ==========================

type smtpProvider struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	timeout  time.Duration
}

func (p *smtpProvider) Name() string { return ProviderSMTP }

func (p *smtpProvider) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled before sending email: %w", err)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), p.host)
	raw := buildEmailMessage(msg, messageID)

	addr := net.JoinHostPort(p.host, fmt.Sprintf("%d", p.port))

	var auth smtp.Auth
	if p.username != "" && p.password != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}

	if err := p.deliver(ctx, addr, auth, msg.From, []string{msg.To}, []byte(raw)); err != nil {
		return "", err
	}
	return messageID, nil
}

func (p *smtpProvider) dial(ctx context.Context, addr string) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}
	return client, nil
}

func (p *smtpProvider) deliver(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	client, err := p.dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if p.useTLS {
		tlsConfig := &tls.Config{
			ServerName: p.host,
		}
		if err = client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}

	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func (p *smtpProvider) testConnection(ctx context.Context) error {
	addr := net.JoinHostPort(p.host, fmt.Sprintf("%d", p.port))
	client, err := p.dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if p.useTLS {
		if err = client.StartTLS(&tls.Config{ServerName: p.host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	return client.Quit()
}

func buildEmailMessage(msg *Message, messageID string) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s\r\n", formatAddress(msg.FromName, msg.From)))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", formatAddress(msg.ToName, msg.To)))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", msg.Subject)))
	builder.WriteString(fmt.Sprintf("Message-ID: %s\r\n", messageID))
	builder.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))

	return builder.String()
}

// ==========================
// Helpers
// ==========================

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", name), email)
}

func htmlBody(text string) string {
	escaped := html.EscapeString(text)
	return "<html><body><p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p></body></html>"
}
