package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/food-delivery/tokenstore"
	"github.com/yeremiapane/food-delivery/utils"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxClaims = "claims"
	ctxToken  = "token"
)

var (
	ErrMissingToken = errors.New("Unauthorized")
	ErrRevokedToken = errors.New("Session has ended")
)

type AuthConfig struct {
	CookieName string
	Revoker    tokenstore.Revoker
}

func (a AuthConfig) cookie() string {
	if a.CookieName == "" {
		return "token"
	}
	return a.CookieName
}

func (a AuthConfig) fromRequest(c *gin.Context) string {
	if token, err := c.Cookie(a.cookie()); err == nil && token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func (a AuthConfig) authenticate(c *gin.Context, token string) {
	if token == "" {
		utils.RespondAbort(c, http.StatusUnauthorized, ErrMissingToken)
		return
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.RespondAbort(c, http.StatusUnauthorized, err)
		return
	}

	if a.Revoker != nil {
		revoked, err := a.Revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			utils.ErrorLogger.Errorf("revocation check failed: %v", err)
			utils.RespondAbort(c, http.StatusInternalServerError, utils.ErrInternal)
			return
		}
		if revoked {
			utils.RespondAbort(c, http.StatusUnauthorized, ErrRevokedToken)
			return
		}
	}

	c.Set(ctxUserID, claims.UserID())
	c.Set(ctxRole, claims.Role)
	c.Set(ctxClaims, claims)
	c.Set(ctxToken, token)
	c.Next()
}

// AuthMiddleware accepts the session cookie or a Bearer header.
func AuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg.authenticate(c, cfg.fromRequest(c))
	}
}

func UserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func Claims(c *gin.Context) *utils.CustomClaims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.CustomClaims)
	return claims
}
