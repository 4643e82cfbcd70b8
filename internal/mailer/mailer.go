package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/config"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/service"
)

// Mailer sends transactional mail over plain SMTP. It implements
// service.Notifier; delivery failures are the caller's to log, the
// registration itself is already committed.
type Mailer struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// New creates a Mailer, or nil when mail is disabled so callers can treat
// the notifier as absent.
func New(cfg *config.MailConfig, logger *zap.Logger) service.Notifier {
	if !cfg.Enabled {
		return nil
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// SendManageLink mails the manage link for a registration. Honors the
// contact's opt-out.
func (m *Mailer) SendManageLink(_ context.Context, reg *model.Registration, event *model.Event, manageURL string) error {
	if !reg.EmailOptIn {
		return nil
	}
	subject := fmt.Sprintf("Your signup for %s", event.Title)
	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for signing up for %s.\n\nUse this link to review or change your signup at any time:\n%s\n\nKeep this email; the link is your key to your registration.\nTo stop receiving these emails, open the link and opt out.",
		reg.ContactName, event.Title, manageURL,
	)
	if err := m.send(reg.ContactEmail, subject, body); err != nil {
		return err
	}
	m.logger.Info("manage link sent",
		zap.String("registration_id", reg.RegistrationID),
		zap.String("event_id", event.EventID))
	return nil
}

func (m *Mailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, to, subject, body,
	)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
