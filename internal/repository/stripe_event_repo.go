package repository

import (
	"errors"

	"leisuretimez/internal/models"

	"gorm.io/gorm"
)

type StripeEventRepository struct {
	db *gorm.DB
}

func NewStripeEventRepository(db *gorm.DB) *StripeEventRepository {
	return &StripeEventRepository{db: db}
}

func (r *StripeEventRepository) WithTx(tx *gorm.DB) *StripeEventRepository {
	return &StripeEventRepository{db: tx}
}

// MarkProcessed records the event ID. It returns false when the ID was already recorded.
func (r *StripeEventRepository) MarkProcessed(eventID, eventType string) (bool, error) {
	err := r.db.Create(&models.ProcessedStripeEvent{EventID: eventID, EventType: eventType}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *StripeEventRepository) IsProcessed(eventID string) bool {
	var n int64
	r.db.Model(&models.ProcessedStripeEvent{}).Where("event_id = ?", eventID).Count(&n)
	return n > 0
}
