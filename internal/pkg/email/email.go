package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendLeaveApprovalRequest(to string, data LeaveApprovalRequestData) error
	SendLeaveDecision(to string, data LeaveDecisionData) error
	SendAutoCheckout(to string, data AutoCheckoutData) error
}

type LeaveApprovalRequestData struct {
	RecipientName string
	EmployeeName  string
	LeaveType     string
	StartDate     string
	EndDate       string
	TotalDays     float64
	Link          string
}

type LeaveDecisionData struct {
	RecipientName string
	LeaveType     string
	StartDate     string
	EndDate       string
	Status        string
	Comments      string
	Link          string
}

type AutoCheckoutData struct {
	RecipientName string
	Date          string
	CheckOutTime  string
	WorkHours     float64
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	sender    Sender
	templates *template.Template
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	return NewEmailServiceWithSender(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password))
}

// NewEmailServiceWithSender builds the service on a custom transport.
func NewEmailServiceWithSender(cfg config.SMTPConfig, sender Sender) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		sender:    sender,
		templates: tmpl,
		backoff:   time.Second,
	}, nil
}

// SendLeaveApprovalRequest tells an approver a request is waiting on them.
func (s *emailServiceImpl) SendLeaveApprovalRequest(to string, data LeaveApprovalRequestData) error {
	return s.render(to, fmt.Sprintf("Leave request from %s awaiting your approval", data.EmployeeName), "leave_approval_request.html", data)
}

// SendLeaveDecision tells the requester the final outcome.
func (s *emailServiceImpl) SendLeaveDecision(to string, data LeaveDecisionData) error {
	return s.render(to, fmt.Sprintf("Your leave request was %s", data.Status), "leave_decision.html", data)
}

// SendAutoCheckout tells an employee their day was closed for them.
func (s *emailServiceImpl) SendAutoCheckout(to string, data AutoCheckoutData) error {
	return s.render(to, fmt.Sprintf("Automatic check-out on %s", data.Date), "auto_checkout.html", data)
}

func (s *emailServiceImpl) render(to, subject, name string, data any) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return s.sendHTML(to, subject, body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.sender.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(s.backoff << (attempt - 1))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
