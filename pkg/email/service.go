package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/code-gritt/klientel/pkg/logger"
)

// Sender is the transport behind the service. The production sender wraps
// SendGrid; tests and keyless dev environments get a logging sender.
type Sender interface {
	Send(toEmail, toName, subject, plainBody string) error
}

// Service handles email sending
type Service struct {
	sender    Sender
	fromEmail string
	fromName  string
	log       logger.Logger
}

// NewService creates a new email service. With an empty API key, messages
// are logged instead of delivered (useful for development).
func NewService(apiKey, fromEmail, fromName string, log logger.Logger) *Service {
	var sender Sender
	if apiKey != "" {
		sender = &sendgridSender{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName}
	} else {
		log.Warn("SENDGRID_API_KEY not set, emails will be logged, not delivered")
		sender = &devSender{log: log}
	}
	return &Service{sender: sender, fromEmail: fromEmail, fromName: fromName, log: log}
}

// NewServiceWithSender wires a custom transport.
func NewServiceWithSender(sender Sender, fromEmail, fromName string, log logger.Logger) *Service {
	return &Service{sender: sender, fromEmail: fromEmail, fromName: fromName, log: log}
}

// SendLeadEmail sends an outreach email to a lead's contact address.
func (s *Service) SendLeadEmail(toEmail, toName, subject, body string) error {
	if err := s.sender.Send(toEmail, toName, subject, body); err != nil {
		return fmt.Errorf("send lead email: %w", err)
	}
	s.log.Info("lead email sent", "to", toEmail, "subject", subject)
	return nil
}

// SendTeamInvite sends a join link for a team.
func (s *Service) SendTeamInvite(toEmail, teamName, inviteURL string) error {
	subject := fmt.Sprintf("You've been invited to join %s on Klientel", teamName)
	body := fmt.Sprintf(
		"Hi,\n\nYou've been invited to join the team %q on Klientel.\n\n"+
			"Accept the invite here:\n%s\n\n"+
			"The invite expires in 7 days. If you weren't expecting this, you can ignore it.\n\n"+
			"Thanks,\nThe Klientel Team",
		teamName, inviteURL)
	if err := s.sender.Send(toEmail, "", subject, body); err != nil {
		return fmt.Errorf("send team invite: %w", err)
	}
	s.log.Info("team invite sent", "to", toEmail, "team", teamName)
	return nil
}

type sendgridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func (sg *sendgridSender) Send(toEmail, toName, subject, plainBody string) error {
	from := mail.NewEmail(sg.fromName, sg.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainBody, "")

	client := sendgrid.NewSendClient(sg.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type devSender struct {
	log logger.Logger
}

func (d *devSender) Send(toEmail, toName, subject, plainBody string) error {
	d.log.Info("email (dev mode)", "to", toEmail, "subject", subject, "body", plainBody)
	return nil
}
