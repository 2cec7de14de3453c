package handler

import (
	"errors"
	"net/http"
	"strconv"

	"leisuretimez/internal/auth"
	"leisuretimez/internal/service"
	"leisuretimez/pkg/payment"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var errStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		service.ErrBookingNotFound, service.ErrPackageNotFound, service.ErrInvoiceNotFound,
		service.ErrPostNotFound, service.ErrCommentNotFound, service.ErrReviewNotFound,
		service.ErrTicketNotFound, service.ErrRequestNotFound, service.ErrEventNotFound,
		service.ErrWalletNotFound, service.ErrRecipientNotFound, service.ErrPromoNotFound,
		service.ErrUserNotFound, service.ErrPDFUnavailable, gorm.ErrRecordNotFound,
	}},
	{http.StatusConflict, []error{
		service.ErrEmailExists, service.ErrBookingPaid, service.ErrBookingCompleted,
		service.ErrBookingCancelled, service.ErrPaymentInProgress, service.ErrPromoApplied,
		service.ErrReviewExists, service.ErrWalletExists, service.ErrPromoExists, service.ErrInvoicePaid,
	}},
	{http.StatusForbidden, []error{
		service.ErrInactiveAccount, service.ErrReviewNotBooked, service.ErrForbidden,
	}},
	{http.StatusUnauthorized, []error{
		service.ErrInvalidCreds, auth.ErrInvalidToken, auth.ErrExpiredToken,
	}},
	{http.StatusTooManyRequests, []error{service.ErrTooManyAttempts}},
	{http.StatusServiceUnavailable, []error{service.ErrNoUploader}},
	{http.StatusBadRequest, []error{
		service.ErrBookingNotPending, service.ErrNotCancellable, service.ErrInvalidDates,
		service.ErrInvalidGuests, service.ErrPaymentMode, service.ErrWalletEmpty,
		service.ErrNoCheckoutSession, service.ErrInvalidSession, service.ErrPaymentIncomplete,
		service.ErrWalletPaymentMissing, service.ErrConfirmParams, service.ErrPromoInvalid,
		service.ErrPromoMinimum, service.ErrNoPromo, service.ErrNoOfferPricing, service.ErrNoMatchingOffer,
		service.ErrInvalidAmount, service.ErrBadAmount, service.ErrBelowMinimum, service.ErrInsufficientFunds,
		service.ErrWalletInactive, service.ErrSelfTransfer, service.ErrPaymentNotDone,
		service.ErrWrongPassword, service.ErrWeakPassword, service.ErrInvalidActivation,
		service.ErrInvalidResetLink, service.ErrParentMismatch, service.ErrInvalidPostState,
		service.ErrInvalidReaction, service.ErrEmptyTitle, service.ErrInvalidRating,
		service.ErrTicketClosed, service.ErrInvalidPriority, service.ErrEmptyMessage,
		service.ErrEmptySubject, service.ErrContactIncomplete, service.ErrInvalidEventType,
		service.ErrInvalidCruiseType, service.ErrInvalidRequestSt, service.ErrRequestDates,
		service.ErrLocationParams, service.ErrCountryCode, service.ErrInvalidCarousel,
		service.ErrImageType, service.ErrImageTooLarge, service.ErrPromoBadInput,
		service.ErrPromoBadPeriod, service.ErrInvalidInvoicePath, payment.ErrInvalidSignature,
	}},
}

// statusOf maps a service error to its HTTP status. Unknown errors are 500.
func statusOf(err error) int {
	for _, group := range errStatus {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

func message(c *gin.Context, err error, status int) string {
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{"method": c.Request.Method, "path": c.FullPath()}).Error("request failed")
		return "internal server error"
	}
	return err.Error()
}

// fail writes {"error": msg}.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	c.JSON(status, gin.H{"error": message(c, err, status)})
}

// failStatus writes {"status": "error", "message": msg}, the shape booking and payment
// clients expect.
func failStatus(c *gin.Context, err error) {
	status := statusOf(err)
	c.JSON(status, gin.H{"status": "error", "message": message(c, err, status)})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
