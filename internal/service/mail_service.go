package service

import (
	"context"
	"fmt"

	"leisuretimez/config"
	"leisuretimez/internal/models"
	"leisuretimez/pkg/mailer"

	log "github.com/sirupsen/logrus"
)

// MailService composes the transactional emails. Send errors are returned so callers
// can decide whether to log or fail.
type MailService struct {
	cfg    *config.Config
	sender mailer.Sender
}

func NewMailService(cfg *config.Config, sender mailer.Sender) *MailService {
	return &MailService{cfg: cfg, sender: sender}
}

func (m *MailService) SendActivation(ctx context.Context, u *models.User, link string) error {
	body := fmt.Sprintf("Hi %s,\n\nPlease click the link below to activate your Leisuretimez account:\n\n%s\n\n"+
		"The link expires in 24 hours.\n\nLeisuretimez", u.Firstname, link)
	return m.sender.Send(ctx, mailer.Message{
		To:      []string{u.Email},
		Subject: "Activate your Leisuretimez account",
		Text:    body,
	})
}

func (m *MailService) SendPasswordReset(ctx context.Context, u *models.User, link string) error {
	body := fmt.Sprintf("Hi %s,\n\nWe received a request to reset your password. Use the link below to choose a new one:\n\n%s\n\n"+
		"The link expires in one hour. If you did not ask for this you can ignore this email.\n\nLeisuretimez", u.Firstname, link)
	return m.sender.Send(ctx, mailer.Message{
		To:      []string{u.Email},
		Subject: "Reset your Leisuretimez password",
		Text:    body,
	})
}

func (m *MailService) SendInvoice(ctx context.Context, to, customerName, invoiceID, pdfPath string) error {
	body := fmt.Sprintf("Dear %s,\n\n"+
		"Thank you for your recent purchase! We truly appreciate your trust in us.\n\n"+
		"Attached is the invoice for your order #%s. Please keep it for your records. "+
		"If you have any questions, feel free to reach out to us at any time.\n\n"+
		"Best regards,\nLeisuretimez\nCustomer Support Team\n%s", customerName, invoiceID, m.cfg.SMTP.From)
	msg := mailer.Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Thank You for Your Purchase! Invoice #%s", invoiceID),
		Text:    body,
	}
	if pdfPath != "" {
		msg.Attachments = []string{pdfPath}
	}
	return m.sender.Send(ctx, msg)
}

// SendContact forwards a contact form to the admin inbox and acknowledges the sender.
// The acknowledgement is best effort.
func (m *MailService) SendContact(ctx context.Context, c *models.Contact) error {
	admin := fmt.Sprintf("New contact form submission received:\n\nName: %s\nEmail: %s\nSubject: %s\n\nMessage:\n%s",
		c.Fullname, c.Email, c.Subject, c.Message)
	if err := m.sender.Send(ctx, mailer.Message{
		To:      []string{m.cfg.SMTP.AdminEmail},
		ReplyTo: c.Email,
		Subject: "New Contact Form Submission: " + c.Subject,
		Text:    admin,
	}); err != nil {
		return err
	}
	ack := fmt.Sprintf("Dear %s,\n\nThank you for contacting us. We have received your message and will get back to you shortly.\n\nLeisuretimez",
		c.Fullname)
	if err := m.sender.Send(ctx, mailer.Message{
		To:      []string{c.Email},
		Subject: "We received your message: " + c.Subject,
		Text:    ack,
	}); err != nil {
		log.WithError(err).WithField("email", c.Email).Warn("contact acknowledgement")
	}
	return nil
}
