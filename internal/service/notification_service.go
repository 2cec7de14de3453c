package service

import (
	"fmt"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"

	log "github.com/sirupsen/logrus"
)

// Pusher delivers a payload to a user's live connections.
type Pusher interface {
	BroadcastToUser(userID uint, payload interface{})
}

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	push     Pusher
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, push Pusher) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, push: push}
}

// Notify stores a notification and pushes it to connected clients. Failures are logged;
// notifications never fail the operation that raised them.
func (s *NotificationService) Notify(userID uint, notifType, title, message string, bookingID *uint) *models.Notification {
	n := &models.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		BookingID: bookingID,
	}
	if err := s.repo.Create(n); err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "type": notifType}).Error("create notification")
		return nil
	}
	if s.push != nil {
		s.push.BroadcastToUser(userID, map[string]interface{}{"type": "notification", "notification": n})
	}
	return n
}

func (s *NotificationService) NotifyBookingConfirmed(b *models.Booking) {
	s.Notify(b.UserID, domain.NotifyBookingConfirmed, "Booking confirmed",
		fmt.Sprintf("Your booking %s has been confirmed.", b.BookingID), &b.ID)
}

func (s *NotificationService) NotifyPaymentReceived(b *models.Booking, amountCents int64) {
	s.Notify(b.UserID, domain.NotifyPaymentReceived, "Payment received",
		fmt.Sprintf("We received your payment of %s for booking %s.", FormatCents(amountCents), b.BookingID), &b.ID)
}

func (s *NotificationService) NotifyBookingCancelled(b *models.Booking) {
	s.Notify(b.UserID, domain.NotifyBookingCancelled, "Booking cancelled",
		fmt.Sprintf("Your booking %s has been cancelled.", b.BookingID), &b.ID)
}

func (s *NotificationService) NotifyRefundProcessed(b *models.Booking) {
	s.Notify(b.UserID, domain.NotifyRefundProcessed, "Refund processed",
		fmt.Sprintf("A refund of %s for booking %s has been credited to your wallet.", FormatCents(b.RefundCents), b.BookingID), &b.ID)
}

// NotifyAllActive fans a notification out to every active user except exclude.
func (s *NotificationService) NotifyAllActive(exclude uint, notifType, title, message string) int {
	ids, err := s.userRepo.ActiveIDs(exclude)
	if err != nil {
		log.WithError(err).Error("list active users")
		return 0
	}
	for _, id := range ids {
		s.Notify(id, notifType, title, message, nil)
	}
	return len(ids)
}
