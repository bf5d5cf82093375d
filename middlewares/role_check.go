package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/food-delivery/utils"
)

var ErrForbidden = errors.New("You do not have permission")

// RoleRequired lets the request through when the caller has one of roles.
// It must run after AuthMiddleware.
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if role == "" {
			utils.RespondAbort(c, http.StatusUnauthorized, ErrMissingToken)
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		utils.RespondAbort(c, http.StatusForbidden, ErrForbidden)
	}
}
