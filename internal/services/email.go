package services

import (
	"context"
	"fmt"
	"log"

	"iftarmatch/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendNewInvitation notifies a group's responsible address about a fresh
// invitation using the "new_invitation" template.
func (s *emailService) SendNewInvitation(ctx context.Context, data *domain.NewInvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("new invitation email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("new_invitation", data)
	if err != nil {
		return fmt.Errorf("failed to render new_invitation template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send new invitation email: %w", err)
	}
	log.Printf("[EMAIL] New invitation email sent to %s", data.Email)
	return nil
}

// SendInvitationAccepted notifies the host using the "invitation_accepted" template.
func (s *emailService) SendInvitationAccepted(ctx context.Context, data *domain.InvitationAcceptedEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation accepted email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("invitation_accepted", data)
	if err != nil {
		return fmt.Errorf("failed to render invitation_accepted template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send invitation accepted email: %w", err)
	}
	log.Printf("[EMAIL] Invitation accepted email sent to %s", data.Email)
	return nil
}

// SendInvitationRejected notifies the host using the "invitation_rejected" template.
func (s *emailService) SendInvitationRejected(ctx context.Context, data *domain.InvitationRejectedEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation rejected email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("invitation_rejected", data)
	if err != nil {
		return fmt.Errorf("failed to render invitation_rejected template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send invitation rejected email: %w", err)
	}
	log.Printf("[EMAIL] Invitation rejected email sent to %s", data.Email)
	return nil
}

// SendNoShowAlert sends the "no_show_alert" template to a single admin address.
func (s *emailService) SendNoShowAlert(ctx context.Context, data *domain.NoShowAlertEmailData) error {
	if data == nil {
		return fmt.Errorf("no-show alert email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("no_show_alert", data)
	if err != nil {
		return fmt.Errorf("failed to render no_show_alert template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send no-show alert email: %w", err)
	}
	log.Printf("[EMAIL] No-show alert sent to %s", data.Email)
	return nil
}

// SendLoginCode sends the passwordless login code email using the "login_code" template.
func (s *emailService) SendLoginCode(ctx context.Context, data *domain.LoginCodeEmailData) error {
	if data == nil {
		return fmt.Errorf("login code email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("login_code", data)
	if err != nil {
		return fmt.Errorf("failed to render login_code template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send login code email: %w", err)
	}
	log.Printf("[EMAIL] Login code sent to %s", data.Email)
	return nil
}
