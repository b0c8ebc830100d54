package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub/internal/domain"
)

const registrationConfirmationTemplate = "registration_confirmation"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRegistrationConfirmation renders and sends the "registration_confirmation" template.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmation data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(registrationConfirmationTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", registrationConfirmationTemplate, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send registration confirmation: %w", err)
	}
	s.logger.InfoContext(ctx, "registration confirmation sent", "to", data.Email, "event", data.EventTitle)
	return nil
}

type emailNotifier struct {
	userRepo     domain.UserRepository
	emailService domain.EmailService
}

// NewEmailNotifier returns a RegistrationNotifier that emails the attendee.
func NewEmailNotifier(userRepo domain.UserRepository, emailService domain.EmailService) domain.RegistrationNotifier {
	return &emailNotifier{userRepo: userRepo, emailService: emailService}
}

func (n *emailNotifier) NotifyRegistered(ctx context.Context, event *domain.Event, reg *domain.EventRegistration) error {
	user, err := n.userRepo.GetByID(ctx, reg.UserID)
	if err != nil {
		return fmt.Errorf("load attendee: %w", err)
	}
	return n.emailService.SendRegistrationConfirmation(ctx, &domain.RegistrationConfirmationEmailData{
		Email:       user.Email,
		Name:        user.DisplayName(),
		EventTitle:  event.Title,
		StartTime:   event.StartTime,
		Location:    event.Location,
		Description: event.Description,
	})
}
