package handler

import (
	"net/http"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/models"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

type SupportHandler struct {
	svc     *service.SupportService
	contact *service.ContactService
}

func NewSupportHandler(svc *service.SupportService, contact *service.ContactService) *SupportHandler {
	return &SupportHandler{svc: svc, contact: contact}
}

func (h *SupportHandler) Create(c *gin.Context) {
	var req struct {
		Subject  string `json:"subject" binding:"required"`
		Priority string `json:"priority"`
		Message  string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Create(middleware.GetUserID(c), req.Subject, req.Priority, req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *SupportHandler) List(c *gin.Context) {
	list, err := h.svc.List(middleware.GetUserID(c), middleware.IsStaff(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *SupportHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(id, middleware.GetUserID(c), middleware.IsStaff(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *SupportHandler) Reply(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Reply(id, middleware.GetUserID(c), middleware.IsStaff(c), req.Message)
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *SupportHandler) Close(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Close(id, middleware.GetUserID(c), middleware.IsStaff(c)); err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Ticket closed"})
}

// Contact is the public contact form.
func (h *SupportHandler) Contact(c *gin.Context) {
	var req struct {
		Fullname string `json:"fullname" binding:"required"`
		Subject  string `json:"subject"`
		Email    string `json:"email" binding:"required,email"`
		Message  string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	msg := &models.Contact{Fullname: req.Fullname, Subject: req.Subject, Email: req.Email, Message: req.Message}
	if err := h.contact.Submit(c.Request.Context(), msg); err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Thank you for contacting us. We will get back to you shortly.",
	})
}
