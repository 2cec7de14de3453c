package repository

import (
	"leisuretimez/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) ListByUserID(userID uint, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) UnreadCount(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&n).Error
	return n, err
}

// MarkRead returns gorm.ErrRecordNotFound when the notification is not the user's.
func (r *NotificationRepository) MarkRead(id, userID uint) error {
	res := r.db.Model(&models.Notification{}).Where("id = ? AND user_id = ?", id, userID).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		r.db.Model(&models.Notification{}).Where("id = ? AND user_id = ?", id, userID).Count(&n)
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(userID uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Update("is_read", true)
	return res.RowsAffected, res.Error
}
