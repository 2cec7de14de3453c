package handler

import (
	"net/http"
	"time"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc      *service.AdminService
	bookings *service.BookingService
	authSvc  *service.AuthService
}

func NewAdminHandler(svc *service.AdminService, bookings *service.BookingService, authSvc *service.AuthService) *AdminHandler {
	return &AdminHandler{svc: svc, bookings: bookings, authSvc: authSvc}
}

// AdminLogin handles POST /admin/login: staff-only login.
func (h *AdminHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	if !sess.User.IsStaff {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff access required"})
		return
	}
	h.authSvc.Audit(sess.User.ID, "admin_login", c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, sessionJSON(sess))
}

// Dashboard handles GET /admin/dashboard: overview stats.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Bookings(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.bookings.List(middleware.GetUserID(c), true, c.Query("status"), c.Query("search"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list, "total": total, "page": page, "limit": limit})
}

func (h *AdminHandler) Users(c *gin.Context) {
	page, limit := parsePagination(c)
	users, total, err := h.svc.Users(c.Query("search"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total, "page": page, "limit": limit})
}

func (h *AdminHandler) Promos(c *gin.Context) {
	list, err := h.svc.Promos()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) CreatePromo(c *gin.Context) {
	var req struct {
		Code           string      `json:"code" binding:"required"`
		DiscountType   string      `json:"discount_type" binding:"required"`
		PercentOff     float64     `json:"percent_off"`
		AmountOff      amountField `json:"amount_off"`
		MinOrderAmount amountField `json:"min_order_amount"`
		MaxUses        int         `json:"max_uses"`
		ValidFrom      time.Time   `json:"valid_from" binding:"required"`
		ValidTo        time.Time   `json:"valid_to" binding:"required"`
		IsActive       *bool       `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.PromoInput{
		Code:         req.Code,
		DiscountType: req.DiscountType,
		PercentOff:   req.PercentOff,
		MaxUses:      req.MaxUses,
		ValidFrom:    req.ValidFrom,
		ValidTo:      req.ValidTo,
		IsActive:     req.IsActive,
	}
	var err error
	if req.AmountOff != "" {
		if in.AmountOffCents, err = req.AmountOff.cents(); err != nil {
			fail(c, err)
			return
		}
	}
	if req.MinOrderAmount != "" {
		if in.MinOrderCents, err = req.MinOrderAmount.cents(); err != nil {
			fail(c, err)
			return
		}
	}
	p, err := h.svc.CreatePromo(in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
