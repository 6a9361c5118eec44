package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gradeup-app/gradeup-api/internal/middleware"
	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/internal/service"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// authorizeAthleteScope allows admins through and forces athletes onto their
// own profile. Returns the error to send; nil means allowed.
func authorizeAthleteScope(c *gin.Context, auth *service.AuthService, athleteID string) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAthlete {
		return nil
	}
	ownID, err := auth.ResolveAthleteID(c.Request.Context(), claims.UserID)
	if err != nil {
		return err
	}
	if ownID != athleteID {
		return appErrors.Clone(appErrors.ErrForbidden, "athlete profile does not belong to you")
	}
	return nil
}

// authorizeBrandScope mirrors authorizeAthleteScope for brand-owned routes.
func authorizeBrandScope(c *gin.Context, auth *service.AuthService, brandID string) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleBrand {
		return nil
	}
	ownID, err := auth.ResolveBrandID(c.Request.Context(), claims.UserID)
	if err != nil {
		return err
	}
	if ownID != brandID {
		return appErrors.Clone(appErrors.ErrForbidden, "brand profile does not belong to you")
	}
	return nil
}
