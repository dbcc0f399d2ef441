package services

import (
	"fmt"
	"os"

	"edunion/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer is the delivery sink used by the fan-out engine. Every send is
// best effort; the caller must handle errors per recipient.
type Mailer interface {
	SendEventNotification(toEmail, toName string, event *models.Event, groupName string) error
	SendEventReminder(toEmail, toName string, event *models.Event, groupName string) error
}

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendEventNotification announces a newly scheduled study session
func (s *EmailService) SendEventNotification(toEmail, toName string, event *models.Event, groupName string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	subject := fmt.Sprintf("New Study Session: %s", event.Title)

	plainContent := fmt.Sprintf(
		"Hello %s, A new study session '%s' has been scheduled in your group '%s'. It runs %s to %s at %s.",
		toName, event.Title, groupName,
		event.StartTime.Format("Mon Jan 2, 3:04 PM"), event.EndTime.Format("3:04 PM"), event.Location)
	htmlContent := fmt.Sprintf(
		"<p>Hello %s,</p><p>A new study session <strong>%s</strong> has been scheduled in your group '%s'.</p><p>It runs %s to %s at %s.</p>",
		toName, event.Title, groupName,
		event.StartTime.Format("Mon Jan 2, 3:04 PM"), event.EndTime.Format("3:04 PM"), event.Location)

	return s.send(mail.NewSingleEmail(from, subject, to, plainContent, htmlContent), toEmail)
}

// SendEventReminder reminds a member that their session starts soon
func (s *EmailService) SendEventReminder(toEmail, toName string, event *models.Event, groupName string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	subject := fmt.Sprintf("Reminder: %s starts soon", event.Title)

	plainContent := fmt.Sprintf(
		"Hello %s, Your study session '%s' in group '%s' starts at %s at %s. Don't miss it!",
		toName, event.Title, groupName,
		event.StartTime.Format("3:04 PM"), event.Location)
	htmlContent := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your study session <strong>%s</strong> in group '%s' starts at %s at %s.</p><p>Don't miss it!</p>",
		toName, event.Title, groupName,
		event.StartTime.Format("3:04 PM"), event.Location)

	return s.send(mail.NewSingleEmail(from, subject, to, plainContent, htmlContent), toEmail)
}

// SendPasswordResetEmail mails out a one-time password reset token
func (s *EmailService) SendPasswordResetEmail(toEmail, toName, token string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	subject := "Password Reset - Edunion"

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", os.Getenv("FRONTEND_URL"), token)
	plainContent := fmt.Sprintf(
		"You requested to reset your password. Use this link within 24 hours: %s If you didn't request this, ignore this email.",
		resetLink)
	htmlContent := fmt.Sprintf(
		"<p>You requested to reset your password.</p><p><a href=\"%s\">Reset your password</a> (valid for 24 hours).</p><p>If you didn't request this, ignore this email.</p>",
		resetLink)

	return s.send(mail.NewSingleEmail(from, subject, to, plainContent, htmlContent), toEmail)
}

func (s *EmailService) send(message *mail.SGMailV3, toEmail string) error {
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d", toEmail, response.StatusCode)
	}
	return nil
}
