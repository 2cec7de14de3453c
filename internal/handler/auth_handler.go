package handler

import (
	"net/http"
	"strconv"

	"leisuretimez/config"
	"leisuretimez/internal/middleware"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

// resetNotice is returned whether or not the address belongs to an account.
const resetNotice = "If an account exists with this email, you will receive instructions shortly."

type AuthHandler struct {
	cfg *config.Config
	svc *service.AuthService
}

func NewAuthHandler(cfg *config.Config, svc *service.AuthService) *AuthHandler {
	return &AuthHandler{cfg: cfg, svc: svc}
}

type RegisterRequest struct {
	Firstname string `json:"firstname" binding:"required,max=100"`
	Lastname  string `json:"lastname" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.svc.Audit(u.ID, "register", c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusCreated, gin.H{
		"user":    u,
		"token":   access,
		"message": "Registration successful. Check your email to activate your account.",
	})
}

// Activate is the link mailed on registration; it lands the user on the login page.
func (h *AuthHandler) Activate(c *gin.Context) {
	uid, err := strconv.ParseUint(c.Param("uid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidActivation.Error()})
		return
	}
	if err := h.svc.Activate(uint(uid), c.Param("token")); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.cfg.Server.FrontendURL+"/login?activated=true")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.svc.Audit(sess.User.ID, "login", c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, sessionJSON(sess))
}

func sessionJSON(sess *service.Session) gin.H {
	return gin.H{
		"token":         sess.AccessToken,
		"refresh_token": sess.RefreshToken,
		"id":            sess.User.ID,
		"email":         sess.User.Email,
		"firstname":     sess.User.Firstname,
		"lastname":      sess.User.Lastname,
		"wallet":        service.FormatCents(sess.Wallet.BalanceCents),
		"image":         sess.Profile.ImageURL,
	}
}

// Logout only records the event; tokens are stateless.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.svc.Audit(middleware.GetUserID(c), "logout", c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out."})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	access, refresh, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	token, err := h.svc.ChangePassword(userID, req.OldPassword, req.NewPassword)
	if err != nil {
		fail(c, err)
		return
	}
	h.svc.Audit(userID, "change_password", c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully", "token": token})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.svc.RequestPasswordReset(c.Request.Context(), req.Email)
	c.JSON(http.StatusOK, gin.H{"message": resetNotice})
}

func (h *AuthHandler) ResendActivation(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.svc.ResendActivation(c.Request.Context(), req.Email)
	c.JSON(http.StatusOK, gin.H{"message": resetNotice})
}

func (h *AuthHandler) ResetPasswordConfirm(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uid, err := strconv.ParseUint(c.Param("uid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidResetLink.Error()})
		return
	}
	if err := h.svc.ConfirmPasswordReset(uint(uid), c.Param("token"), req.Password); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	if err := h.svc.DeleteAccount(userID, req.Password, req.Reason); err != nil {
		fail(c, err)
		return
	}
	h.svc.Audit(userID, "delete_account", c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
