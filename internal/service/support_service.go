package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"

	log "github.com/sirupsen/logrus"
)

var (
	ErrTicketNotFound    = errors.New("Ticket not found")
	ErrTicketClosed      = errors.New("Cannot reply to a closed ticket")
	ErrInvalidPriority   = errors.New("priority must be low, medium or high")
	ErrEmptyMessage      = errors.New("message is required")
	ErrEmptySubject      = errors.New("subject is required")
	ErrContactIncomplete = errors.New("fullname, email and message are required")
)

type SupportService struct {
	repo *repository.SupportRepository
	now  func() time.Time
}

func NewSupportService(repo *repository.SupportRepository) *SupportService {
	return &SupportService{repo: repo, now: time.Now}
}

// Create opens a ticket together with its first message.
func (s *SupportService) Create(userID uint, subject, priority, message string) (*models.SupportTicket, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrEmptySubject
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	switch priority {
	case "":
		priority = domain.PriorityMedium
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
	default:
		return nil, ErrInvalidPriority
	}
	t := &models.SupportTicket{UserID: userID, Subject: subject, Priority: priority, Status: domain.TicketOpen}
	first := &models.SupportMessage{SenderID: userID, Message: message}
	if err := s.repo.CreateTicket(t, first); err != nil {
		return nil, err
	}
	return s.repo.GetTicket(t.ID)
}

// List returns the user's tickets, or all of them for staff.
func (s *SupportService) List(userID uint, staff bool) ([]models.SupportTicket, error) {
	if staff {
		userID = 0
	}
	return s.repo.ListTickets(userID)
}

func (s *SupportService) Get(id, userID uint, staff bool) (*models.SupportTicket, error) {
	t, err := s.repo.GetTicket(id)
	if err != nil || (!staff && t.UserID != userID) {
		return nil, ErrTicketNotFound
	}
	return t, nil
}

func (s *SupportService) Reply(id, userID uint, staff bool, message string) (*models.SupportTicket, error) {
	t, err := s.Get(id, userID, staff)
	if err != nil {
		return nil, err
	}
	if t.Status == domain.TicketClosed {
		return nil, ErrTicketClosed
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	m := &models.SupportMessage{TicketID: t.ID, SenderID: userID, Message: message, CreatedAt: s.now()}
	if err := s.repo.AddMessage(m); err != nil {
		return nil, err
	}
	return s.repo.GetTicket(t.ID)
}

func (s *SupportService) Close(id, userID uint, staff bool) error {
	t, err := s.Get(id, userID, staff)
	if err != nil {
		return err
	}
	return s.repo.SetStatus(t.ID, domain.TicketClosed)
}

type ContactService struct {
	repo *repository.ContactRepository
	mail *MailService
}

func NewContactService(repo *repository.ContactRepository, mail *MailService) *ContactService {
	return &ContactService{repo: repo, mail: mail}
}

// Submit stores the message and forwards it to the admin inbox. A mail failure is only
// logged.
func (s *ContactService) Submit(ctx context.Context, c *models.Contact) error {
	if strings.TrimSpace(c.Fullname) == "" || strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Message) == "" {
		return ErrContactIncomplete
	}
	c.Status = domain.RequestPending
	if err := s.repo.Create(c); err != nil {
		return err
	}
	if s.mail != nil {
		if err := s.mail.SendContact(ctx, c); err != nil {
			log.WithError(err).WithField("contact_id", c.ID).Error("send contact email")
		}
	}
	return nil
}
