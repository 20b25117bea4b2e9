// Package escalation forwards admin alerts that stay unacknowledged to
// out-of-band channels (SMS, email), so a backlog is not missed just
// because the operator stepped away from the console.
package escalation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-notify-agent/internal/domain"
	"github.com/rs/zerolog"
)

const sendTimeout = 10 * time.Second

// SMSSender is the slice of the SNS sender this service needs.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Mailer is the slice of the SMTP mailer this service needs.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Deps holds the configured delivery channels; either may be nil.
type Deps struct {
	SMS       SMSSender
	SMSNumber string
	Mailer    Mailer
	EmailTo   string
	Logger    zerolog.Logger
}

type Service struct {
	sms       SMSSender
	smsNumber string
	mailer    Mailer
	emailTo   string
	log       zerolog.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		sms:       d.SMS,
		smsNumber: d.SMSNumber,
		mailer:    d.Mailer,
		emailTo:   d.EmailTo,
		log:       d.Logger.With().Str("component", "escalation").Logger(),
	}
}

// Escalate pushes the alert out through every configured channel. Delivery
// failures are logged, never propagated: escalation is best-effort and must
// not disturb the alert pipeline.
func (s *Service) Escalate(evt domain.AlertEvent) {
	message := fmt.Sprintf("Unacknowledged admin alert: unread notifications went %d -> %d at %s",
		evt.PreviousCount, evt.NewCount, evt.FiredAt.Format(time.RFC3339))

	if s.sms != nil && s.smsNumber != "" {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := s.sms.SendSMS(ctx, s.smsNumber, message); err != nil {
			s.log.Warn().Err(err).Msg("sms escalation failed")
		}
		cancel()
	}

	if s.mailer != nil && s.emailTo != "" {
		if err := s.mailer.SendEmail(s.emailTo, "Unacknowledged admin alert", message); err != nil {
			s.log.Warn().Err(err).Msg("email escalation failed")
		}
	}
}
