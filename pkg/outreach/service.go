package outreach

import (
	"context"
	"fmt"

	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
	"github.com/code-gritt/klientel/pkg/store"
)

// SendCostCredits is deducted from the owner's balance per email sent.
const SendCostCredits = 1

var ErrNoLeadEmail = fmt.Errorf("lead has no email address")

type Store interface {
	GetLead(ctx context.Context, id, userID int) (store.Lead, error)
	DeductCredits(ctx context.Context, userID, amount int) (int, error)
	AppendActivity(ctx context.Context, userID int, action string) (store.Activity, error)
}

type Mailer interface {
	SendLeadEmail(toEmail, toName, subject, body string) error
}

// Service sends outreach emails to leads, charging credits per send.
type Service struct {
	store   Store
	mailer  Mailer
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewService(s Store, mailer Mailer, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{store: s, mailer: mailer, log: log, metrics: m}
}

// Send emails one of the user's leads. The credit is charged only after the
// lead is resolved and found addressable.
func (s *Service) Send(ctx context.Context, leadID, userID int, subject, body string) error {
	lead, err := s.store.GetLead(ctx, leadID, userID)
	if err != nil {
		return err
	}
	if lead.Email == "" {
		return ErrNoLeadEmail
	}

	if _, err := s.store.DeductCredits(ctx, userID, SendCostCredits); err != nil {
		return err
	}

	if err := s.mailer.SendLeadEmail(lead.Email, lead.Name, subject, body); err != nil {
		return err
	}

	if _, err := s.store.AppendActivity(ctx, userID,
		fmt.Sprintf("Sent email to %s", lead.Name)); err != nil {
		s.log.Error("append activity", "user_id", userID, "error", err)
	}

	s.metrics.RecordEmailSent()
	return nil
}
