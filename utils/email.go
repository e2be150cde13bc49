// utils/email.go
package utils

import (
	"fmt"
	"html"
	"strings"

	"candle-shop/models"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// Mailer delivers one message
type Mailer interface {
	Send(toEmail, subject, htmlContent string) error
}

type postmarkMailer struct {
	client *postmark.Client
	from   string
}

func (m *postmarkMailer) Send(toEmail, subject, htmlContent string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type sendgridMailer struct {
	client *sendgrid.Client
	from   string
}

func (m *sendgridMailer) Send(toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("Candle Shop", m.from),
		subject,
		mail.NewEmail("", toEmail),
		htmlContent,
		htmlContent,
	)
	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// logMailer only records the message, used when no provider is configured
type logMailer struct {
	log logrus.FieldLogger
}

func (m *logMailer) Send(toEmail, subject, _ string) error {
	m.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject}).Info("email delivery disabled")
	return nil
}

// EmailService renders the shop notifications and hands them to a Mailer
type EmailService struct {
	mailer Mailer
	log    logrus.FieldLogger
}

// NewEmailService picks the provider named in cfg.EmailProvider
func NewEmailService(cfg *Config, log logrus.FieldLogger) *EmailService {
	var m Mailer
	switch cfg.EmailProvider {
	case "postmark":
		m = &postmarkMailer{client: postmark.NewClient(cfg.PostmarkAPIToken, ""), from: cfg.EmailSender}
	case "sendgrid":
		m = &sendgridMailer{client: sendgrid.NewSendClient(cfg.SendgridAPIKey), from: cfg.EmailSender}
	default:
		m = &logMailer{log: log}
	}
	return NewEmailServiceWithMailer(m, log)
}

// NewEmailServiceWithMailer creates an EmailService delivering through m
func NewEmailServiceWithMailer(m Mailer, log logrus.FieldLogger) *EmailService {
	return &EmailService{mailer: m, log: log}
}

// SendOrderConfirmationEmail tells the buyer the order was placed
func (es *EmailService) SendOrderConfirmationEmail(toEmail, name string, order models.Order) error {
	subject := fmt.Sprintf("Order #%d confirmed", order.ID)
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %d) has been placed successfully.<br><br>Total Amount: <strong>%s</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		html.EscapeString(name),
		order.ID,
		order.Total.StringFixed(2),
		html.EscapeString(order.PaymentMethod),
	)
	return es.send("order_confirmation", toEmail, subject, htmlContent)
}

func (es *EmailService) send(kind, toEmail, subject, htmlContent string) error {
	err := es.mailer.Send(toEmail, subject, htmlContent)
	entry := es.log.WithFields(logrus.Fields{"email": kind, "to": toEmail})
	if err != nil {
		entry.WithError(err).Debug("email delivery failed")
		return err
	}
	entry.Debug("email handed to provider")
	return nil
}

// SendStatusUpdateEmail tells the buyer the order moved to a new status
func (es *EmailService) SendStatusUpdateEmail(change models.StatusChange) error {
	subject := fmt.Sprintf("Order #%d is now %s", change.OrderID, change.Status)
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>The status of your order (ID: %d) is now <strong>%s</strong>.",
		html.EscapeString(change.Name),
		change.OrderID,
		change.Status,
	)
	return es.send("status_update", change.Email, subject, htmlContent)
}

// SendMessageReply answers a contact message, quoting the original below the reply
func (es *EmailService) SendMessageReply(msg models.Message, reply string) error {
	subject := "Re: " + msg.Subject
	if strings.TrimSpace(msg.Subject) == "" {
		subject = "Re: your message to Candle Shop"
	}
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>%s<br><br><hr><em>You wrote:</em><br>%s",
		html.EscapeString(msg.Name),
		paragraphs(reply),
		paragraphs(msg.Body),
	)
	return es.send("message_reply", msg.Email, subject, htmlContent)
}

// paragraphs escapes text and keeps its line breaks
func paragraphs(text string) string {
	return strings.ReplaceAll(html.EscapeString(strings.TrimSpace(text)), "\n", "<br>")
}
