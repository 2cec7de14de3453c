package middleware

import (
	"leisuretimez/internal/auth"

	"github.com/gin-gonic/gin"
)

// StaffRequired checks that the authenticated user is staff.
func StaffRequired() gin.HandlerFunc {
	return RequireRole(auth.RoleStaff)
}
