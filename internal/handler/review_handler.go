package handler

import (
	"net/http"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	svc *service.ReviewService
}

func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Param("pid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create requires a paid booking for the package and allows one review per user.
func (h *ReviewHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authentication required"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	r, err := h.svc.Create(userID, c.Param("pid"), req.Rating, req.Comment)
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "review": r})
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	r, err := h.svc.Update(id, middleware.GetUserID(c), req.Rating, req.Comment)
	if err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "review": r})
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(id, middleware.GetUserID(c)); err != nil {
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Review deleted"})
}
