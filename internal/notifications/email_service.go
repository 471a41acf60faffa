package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"venuebook/internal/shared/config"
	"venuebook/pkg/logger"
)

// EmailService delivers one notification
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}

func NewSMTPConfig(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		UseTLS:    true,
	}
}

// SMTPEmailService is a real SMTP implementation of the EmailService interface
type SMTPEmailService struct {
	config *SMTPConfig
	layout *template.Template
	log    *logger.Logger
}

func NewSMTPEmailService(config *SMTPConfig, log *logger.Logger) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPEmailService{
		config: config,
		layout: template.Must(template.New("html").Parse(htmlLayout)),
		log:    log,
	}, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return errors.New("SMTP config is nil")
	}
	if config.Host == "" {
		return errors.New("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return errors.New("SMTP port must be between 1 and 65535")
	}
	if config.FromEmail == "" {
		return errors.New("from email is required")
	}
	return nil
}

func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	lines := contentLines(notification)

	var htmlBuf bytes.Buffer
	err := s.layout.Execute(&htmlBuf, map[string]interface{}{
		"Subject": notification.Subject,
		"Lines":   lines,
		"From":    s.config.FromName,
	})
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	textBody := strings.Join(lines, "\n\n") + "\n\n" + s.config.FromName

	message := s.buildMessage(notification.RecipientEmail, notification.Subject, htmlBuf.String(), textBody)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, notification.RecipientEmail, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, []string{notification.RecipientEmail}, message)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.DebugWithContext(ctx, "email sent", map[string]interface{}{
		"type":           string(notification.Type),
		"reservation_id": notification.ReservationID.String(),
	})
	return nil
}

// sendWithSTARTTLS sends email with STARTTLS encryption
func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

// buildMessage creates the email message with proper headers
func (s *SMTPEmailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

const htmlLayout = `<h2>{{.Subject}}</h2>
{{range .Lines}}<p>{{.}}</p>
{{end}}<p>{{.From}}</p>`

// contentLines renders the body paragraphs for a notification
func contentLines(n *EmailNotification) []string {
	data := n.TemplateData
	start := data["start_time"]
	size := data["party_size"]

	switch n.Type {
	case NotificationTypeReservationConfirmed:
		return []string{fmt.Sprintf("Your reservation for %v guests on %v is confirmed.", size, start)}
	case NotificationTypeReservationPending:
		return []string{fmt.Sprintf("Your reservation for %v guests on %v was received and is awaiting confirmation by the venue.", size, start)}
	case NotificationTypeReservationWaitlist:
		return []string{
			fmt.Sprintf("The slot on %v is currently full, so your party of %v was added to the waitlist.", start, size),
			"We will email you as soon as seats free up.",
		}
	case NotificationTypeReservationCancelled:
		lines := []string{fmt.Sprintf("Your reservation on %v was cancelled.", start)}
		if pct, ok := data["refund_percent"]; ok {
			lines = append(lines, fmt.Sprintf("Refund: %v%%.", pct))
		}
		return lines
	case NotificationTypeReservationDeclined:
		return []string{fmt.Sprintf("The venue could not accept your reservation on %v.", start)}
	case NotificationTypeWaitlistOffer:
		return []string{
			fmt.Sprintf("Seats for your party of %v on %v are available.", size, start),
			fmt.Sprintf("Accept the offer before %v to secure them.", data["offer_expires_at"]),
		}
	case NotificationTypeWaitlistOfferExpired:
		return []string{fmt.Sprintf("Your offer for %v expired before it was accepted.", start)}
	case NotificationTypeModificationDecided:
		return []string{fmt.Sprintf("Your change request for the reservation on %v was %v.", start, data["decision"])}
	case NotificationTypeVenueApprovalNeeded:
		return []string{fmt.Sprintf("A party of %v booked %v and is awaiting your approval.", size, start)}
	case NotificationTypeVenueModificationNeeded:
		return []string{fmt.Sprintf("A guest asked to change their reservation on %v.", start)}
	}
	return []string{n.Subject}
}

// LogEmailService writes notifications to the log instead of sending them.
// Used when no SMTP host is configured.
type LogEmailService struct {
	log *logger.Logger
}

func NewLogEmailService(log *logger.Logger) *LogEmailService {
	return &LogEmailService{log: log}
}

func (s *LogEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	s.log.InfoWithContext(ctx, "email notification", map[string]interface{}{
		"type":      string(notification.Type),
		"recipient": notification.RecipientEmail,
		"subject":   notification.Subject,
		"body":      strings.Join(contentLines(notification), " "),
	})
	return nil
}
