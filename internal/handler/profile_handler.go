package handler

import (
	"net/http"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update handles both PUT and PATCH; absent fields are left as they are.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req struct {
		Address       *string `json:"address"`
		City          *string `json:"city"`
		State         *string `json:"state"`
		Country       *string `json:"country"`
		Phone         *string `json:"phone"`
		DateOfBirth   *string `json:"date_of_birth"`
		MaritalStatus *string `json:"marital_status"`
		Profession    *string `json:"profession"`
		Gender        *string `json:"gender"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.ProfileInput{
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		Phone:         req.Phone,
		MaritalStatus: req.MaritalStatus,
		Profession:    req.Profession,
		Gender:        req.Gender,
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := parseDay("date_of_birth", *req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in.DateOfBirth = &dob
	}
	p, err := h.svc.Update(middleware.GetUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UploadImage takes a multipart "image" file.
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	defer f.Close()
	p, err := h.svc.UploadImage(c.Request.Context(), middleware.GetUserID(c), f, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": p.ImageURL})
}

func (h *ProfileHandler) PersonalBooking(c *gin.Context) {
	p, err := h.svc.Get(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *ProfileHandler) BookingHistory(c *gin.Context) {
	h.profileWithBookings(c, "booking_histories")
}

func (h *ProfileHandler) AccountSettings(c *gin.Context) {
	h.profileWithBookings(c, "bookings")
}

func (h *ProfileHandler) profileWithBookings(c *gin.Context, key string) {
	userID := middleware.GetUserID(c)
	p, err := h.svc.Get(userID)
	if err != nil {
		fail(c, err)
		return
	}
	history, err := h.svc.BookingHistory(userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, key: history})
}
