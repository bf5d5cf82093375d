package middlewares

import (
	"github.com/gin-gonic/gin"
)

const tokenQueryParam = "token"

// WebSocketAuthMiddleware also takes the token from ?token, since browser
// websocket clients cannot set headers.
func WebSocketAuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cfg.fromRequest(c)
		if token == "" {
			token = c.Query(tokenQueryParam)
		}
		cfg.authenticate(c, token)
	}
}
