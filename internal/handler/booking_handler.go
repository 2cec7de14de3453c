package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type BookingHandler struct {
	svc  *service.BookingService
	auth *service.AuthService
}

func NewBookingHandler(svc *service.BookingService, auth *service.AuthService) *BookingHandler {
	return &BookingHandler{svc: svc, auth: auth}
}

type BookingRequest struct {
	Package       string `json:"package"`
	CruiseType    string `json:"cruise_type"`
	Purpose       string `json:"purpose"`
	DateFrom      string `json:"datefrom" binding:"required"`
	DateTo        string `json:"dateto" binding:"required"`
	Continent     string `json:"continent"`
	TravelCountry string `json:"travelcountry"`
	TravelState   string `json:"travelstate"`
	Destinations  string `json:"destinations"`
	Guests        int    `json:"guests" binding:"gte=0"`
	Duration      int    `json:"duration"`
	Adult         int    `json:"adult" binding:"gte=1"`
	Children      int    `json:"children" binding:"gte=0"`
	Service       string `json:"service"`
	Comment       string `json:"comment"`
	Lastname      string `json:"lastname"`
	Firstname     string `json:"firstname"`
	Profession    string `json:"profession"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Gender        string `json:"gender"`
	Country       string `json:"country"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
}

func parseDay(field, v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format (use YYYY-MM-DD)", field)
	}
	return t, nil
}

func (r *BookingRequest) input() (service.BookingInput, error) {
	from, err := parseDay("datefrom", r.DateFrom)
	if err != nil {
		return service.BookingInput{}, err
	}
	to, err := parseDay("dateto", r.DateTo)
	if err != nil {
		return service.BookingInput{}, err
	}
	return service.BookingInput{
		CruiseType:    r.CruiseType,
		Purpose:       r.Purpose,
		DateFrom:      from,
		DateTo:        to,
		Continent:     r.Continent,
		TravelCountry: r.TravelCountry,
		TravelState:   r.TravelState,
		Destinations:  r.Destinations,
		Guests:        r.Guests,
		Duration:      r.Duration,
		Adult:         r.Adult,
		Children:      r.Children,
		Service:       r.Service,
		Comment:       r.Comment,
		Lastname:      r.Lastname,
		Firstname:     r.Firstname,
		Profession:    r.Profession,
		Email:         r.Email,
		Phone:         r.Phone,
		Gender:        r.Gender,
		Country:       r.Country,
		Address:       r.Address,
		City:          r.City,
		State:         r.State,
	}, nil
}

// BookPackage handles both /book-package/:pid and POST /bookings (package in the body).
func (h *BookingHandler) BookPackage(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid data provided", "errors": err.Error()})
		return
	}
	pid := c.Param("pid")
	if pid == "" {
		pid = req.Package
	}
	if pid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "package is required"})
		return
	}
	in, err := req.input()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	b, err := h.svc.Create(middleware.GetUserID(c), pid, in)
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking successful", "booking_id": b.BookingID, "booking": b})
}

func (h *BookingHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(middleware.GetUserID(c), middleware.IsStaff(c), c.Query("status"), c.Query("search"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list, "total": total, "page": page, "limit": limit})
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.svc.Get(c.Param("booking_id"), middleware.GetUserID(c), middleware.IsStaff(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// body is optional
	_ = c.ShouldBindJSON(&req)
	b, err := h.svc.Cancel(c.Param("booking_id"), middleware.GetUserID(c), req.Reason)
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"message":       "Booking cancelled",
		"booking_id":    b.BookingID,
		"refund_amount": service.FormatCents(b.RefundCents),
		"refund_status": b.RefundStatus,
	})
}

func (h *BookingHandler) Modify(c *gin.Context) {
	var req struct {
		DateFrom *string `json:"datefrom"`
		DateTo   *string `json:"dateto"`
		Adult    *int    `json:"adult"`
		Children *int    `json:"children"`
		Guests   *int    `json:"guests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid data provided", "errors": err.Error()})
		return
	}
	in := service.ModifyInput{Adult: req.Adult, Children: req.Children, Guests: req.Guests}
	if req.DateFrom != nil {
		t, err := parseDay("datefrom", *req.DateFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
		in.DateFrom = &t
	}
	if req.DateTo != nil {
		t, err := parseDay("dateto", *req.DateTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
		in.DateTo = &t
	}
	b, err := h.svc.Modify(c.Param("booking_id"), middleware.GetUserID(c), in)
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Booking updated", "booking": b})
}

// Pay starts payment of a booking in wallet, split or stripe mode.
func (h *BookingHandler) Pay(c *gin.Context) {
	u, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		failStatus(c, err)
		return
	}
	res, err := h.svc.PayBooking(c.Request.Context(), c.Param("booking_id"), u, c.Param("mode"))
	if err != nil {
		failStatus(c, err)
		return
	}
	body := gin.H{"status": "success", "booking_id": res.BookingID, "mode": res.Mode}
	if res.CheckoutURL != "" {
		body["checkout_url"] = res.CheckoutURL
		body["session_id"] = res.SessionID
	}
	if res.WalletAmountCents > 0 {
		body["wallet_amount"] = service.FormatCents(res.WalletAmountCents)
	}
	if res.StripeAmountCents > 0 {
		body["stripe_amount"] = service.FormatCents(res.StripeAmountCents)
	}
	if res.Message != "" {
		body["message"] = res.Message
	}
	c.JSON(http.StatusOK, body)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	b, err := h.svc.Complete(c.Request.Context(), c.Param("booking_id"), middleware.GetUserID(c))
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Payment processed and invoice created",
		"booking_id": b.BookingID,
		"invoice_id": b.InvoiceID,
	})
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
		Mode       string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": service.ErrConfirmParams.Error()})
		return
	}
	b, err := h.svc.Confirm(c.Request.Context(), req.Identifier, req.Mode, middleware.GetUserID(c))
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"booking_id": b.BookingID,
		"mode":       req.Mode,
		"invoice_id": b.InvoiceID,
	})
}

func (h *BookingHandler) ApplyPromo(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "code is required"})
		return
	}
	res, err := h.svc.ApplyPromo(c.Param("booking_id"), middleware.GetUserID(c), req.Code)
	if err != nil {
		failStatus(c, err)
		return
	}
	discount := service.FormatCents(res.DiscountCents)
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"message":        "Promo code applied. You save " + discount + "!",
		"code":           res.Code,
		"original_price": service.FormatCents(res.OriginalPriceCents),
		"discount":       discount,
		"new_price":      service.FormatCents(res.Booking.PriceCents),
	})
}

func (h *BookingHandler) RemovePromo(c *gin.Context) {
	b, err := h.svc.RemovePromo(c.Param("booking_id"), middleware.GetUserID(c))
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Promo code removed",
		"price":   service.FormatCents(b.PriceCents),
	})
}

// CheckOffer finds the offer tier for ?adult=&children=.
func (h *BookingHandler) CheckOffer(c *gin.Context) {
	adult, err1 := strconv.Atoi(c.DefaultQuery("adult", "1"))
	children, err2 := strconv.Atoi(c.DefaultQuery("children", "0"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "adult and children must be integers"})
		return
	}
	o, err := h.svc.CheckOffer(c.Param("pid"), adult, children)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"adult":    o.Adult,
		"children": o.Children,
		"price":    service.FormatCents(o.PriceCents),
	})
}
