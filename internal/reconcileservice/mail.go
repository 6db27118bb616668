package reconcileservice

import (
	"fmt"
	"time"

	"github.com/go-mail/mail/v2"
)

// MailConfig is the SMTP account used for operator notices.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	Operator string
}

func NewMailer(cfg MailConfig, tp TemplateParser) *Mail {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 5 * time.Second

	return &Mail{
		dialer:   dialer,
		parser:   tp,
		sender:   cfg.Sender,
		operator: cfg.Operator,
	}
}

// notifyOperator mails an abandoned link to the configured operator address.
func (m *Mail) notifyOperator(notice operatorNotice) error {
	if m.operator == "" {
		return fmt.Errorf("no operator address configured for blog %s", notice.BlogID)
	}

	msg, err := m.compose(m.operator, templateName, notice)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dialer.DialAndSend(msg)
}

func (m *Mail) compose(recipient, templateFile string, data any) (*mail.Message, error) {
	subject, plainBody, htmlBody, err := m.parser.ParseTemplate(templateFile, data)
	if err != nil {
		return nil, fmt.Errorf("could not render %s: %w", templateFile, err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	return msg, nil
}
