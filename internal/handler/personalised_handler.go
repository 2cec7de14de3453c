package handler

import (
	"net/http"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

// PersonalisedHandler serves both /personalised-bookings and /cruise-bookings; the
// service decides whether requests are forced to cruises.
type PersonalisedHandler struct {
	svc *service.PersonalisedService
}

func NewPersonalisedHandler(svc *service.PersonalisedService) *PersonalisedHandler {
	return &PersonalisedHandler{svc: svc}
}

type personalisedRequest struct {
	EventType            string  `json:"event_type"`
	DateFrom             string  `json:"date_from" binding:"required"`
	DateTo               string  `json:"date_to" binding:"required"`
	DurationHours        *int    `json:"duration_hours"`
	DurationDays         *int    `json:"duration_days"`
	CruiseType           string  `json:"cruise_type"`
	Continent            string  `json:"continent"`
	Country              string  `json:"country"`
	State                string  `json:"state"`
	PreferredDestination string  `json:"preferred_destination"`
	Guests               int     `json:"guests"`
	Adults               int     `json:"adults"`
	Children             int     `json:"children"`
	Catering             bool    `json:"catering"`
	BarAttendance        bool    `json:"bar_attendance"`
	Decoration           bool    `json:"decoration"`
	SpecialSecurity      bool    `json:"special_security"`
	Photography          bool    `json:"photography"`
	Entertainment        bool    `json:"entertainment"`
	AdditionalComments   string  `json:"additional_comments"`
	Status               *string `json:"status"`
	AdminNotes           *string `json:"admin_notes"`
}

func bindRequest(c *gin.Context) (service.RequestInput, bool) {
	var req personalisedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.RequestInput{}, false
	}
	from, err := parseDay("date_from", req.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.RequestInput{}, false
	}
	to, err := parseDay("date_to", req.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.RequestInput{}, false
	}
	return service.RequestInput{
		EventType:            req.EventType,
		DateFrom:             from,
		DateTo:               to,
		DurationHours:        req.DurationHours,
		DurationDays:         req.DurationDays,
		CruiseType:           req.CruiseType,
		Continent:            req.Continent,
		Country:              req.Country,
		State:                req.State,
		PreferredDestination: req.PreferredDestination,
		Guests:               req.Guests,
		Adults:               req.Adults,
		Children:             req.Children,
		Catering:             req.Catering,
		BarAttendance:        req.BarAttendance,
		Decoration:           req.Decoration,
		SpecialSecurity:      req.SpecialSecurity,
		Photography:          req.Photography,
		Entertainment:        req.Entertainment,
		AdditionalComments:   req.AdditionalComments,
		Status:               req.Status,
		AdminNotes:           req.AdminNotes,
	}, true
}

func (h *PersonalisedHandler) Create(c *gin.Context) {
	in, ok := bindRequest(c)
	if !ok {
		return
	}
	b, err := h.svc.Create(middleware.GetUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *PersonalisedHandler) List(c *gin.Context) {
	list, err := h.svc.List(middleware.GetUserID(c), middleware.IsStaff(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PersonalisedHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.Get(id, middleware.GetUserID(c), middleware.IsStaff(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *PersonalisedHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, ok := bindRequest(c)
	if !ok {
		return
	}
	b, err := h.svc.Update(id, middleware.GetUserID(c), middleware.IsStaff(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *PersonalisedHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(id, middleware.GetUserID(c), middleware.IsStaff(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
