package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
	"github.com/boxgym/boxgym-api/pkg/response"
)

// RequireProfessor restricts a route to professor accounts.
func RequireProfessor() gin.HandlerFunc {
	return requireRole(func(claims *models.JWTClaims, c *gin.Context) bool {
		return claims.IsProfessor()
	})
}

// RequireProfessorOrSelf allows professors, and students when the :id path
// parameter matches their own profile.
func RequireProfessorOrSelf() gin.HandlerFunc {
	return requireRole(func(claims *models.JWTClaims, c *gin.Context) bool {
		if claims.IsProfessor() {
			return true
		}
		targetID := c.Param("id")
		return targetID != "" && targetID == claims.ProfileID
	})
}

func requireRole(allow func(*models.JWTClaims, *gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || !claims.Role.Valid() {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allow(claims, c) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
