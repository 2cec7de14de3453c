package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"sync"

	"github.com/jordan-wright/email"
)

type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []string // file paths
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)

	e := email.NewEmail()
	e.From = s.from
	e.To = msg.To
	e.Subject = msg.Subject
	if msg.ReplyTo != "" {
		e.ReplyTo = []string{msg.ReplyTo}
	}
	e.Text = []byte(msg.Text)
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	for _, path := range msg.Attachments {
		if _, err := e.AttachFile(path); err != nil {
			return fmt.Errorf("attach %s: %w", path, err)
		}
	}
	return e.Send(addr, auth)
}

// Recorder keeps messages in memory instead of sending them.
type Recorder struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func (r *Recorder) Send(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, msg)
	return nil
}

func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return Message{}, false
	}
	return r.Sent[len(r.Sent)-1], true
}
