package repository

import (
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"

	"gorm.io/gorm"
)

type SupportRepository struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

// CreateTicket stores the ticket and its opening message together.
func (r *SupportRepository) CreateTicket(t *models.SupportTicket, first *models.SupportMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Messages").Create(t).Error; err != nil {
			return err
		}
		first.TicketID = t.ID
		return tx.Omit("Sender").Create(first).Error
	})
}

func (r *SupportRepository) GetTicket(id uint) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC").Order("id ASC")
	}).Preload("Messages.Sender").First(&t, id).Error
	if err != nil {
		return nil, err
	}
	for i := range t.Messages {
		if t.Messages[i].Sender != nil {
			t.Messages[i].SenderEmail = t.Messages[i].Sender.Email
		}
	}
	return &t, nil
}

// ListTickets returns userID's tickets, or every ticket when userID is 0.
func (r *SupportRepository) ListTickets(userID uint) ([]models.SupportTicket, error) {
	q := r.db.Model(&models.SupportTicket{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var list []models.SupportTicket
	err := q.Order("updated_at DESC").Find(&list).Error
	return list, err
}

func (r *SupportRepository) AddMessage(m *models.SupportMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sender").Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&models.SupportTicket{}).Where("id = ?", m.TicketID).Update("updated_at", m.CreatedAt).Error
	})
}

func (r *SupportRepository) SetStatus(id uint, status string) error {
	return r.db.Model(&models.SupportTicket{}).Where("id = ?", id).Update("status", status).Error
}

func (r *SupportRepository) CountOpen() int64 {
	var n int64
	r.db.Model(&models.SupportTicket{}).Where("status IN ?", []string{domain.TicketOpen, domain.TicketInProgress}).Count(&n)
	return n
}
