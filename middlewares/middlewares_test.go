package middlewares

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/tokenstore"
	"github.com/yeremiapane/food-delivery/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error", "text")
	utils.InitJWT("middleware-test", time.Hour)
}

func protected(cfg AuthConfig, roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(cfg)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": Role(c)})
	})
	r.GET("/private", handlers...)
	r.GET("/ws", WebSocketAuthMiddleware(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareSources(t *testing.T) {
	token, _, err := utils.GenerateToken(7, models.RoleClient)
	require.NoError(t, err)
	r := protected(AuthConfig{CookieName: "token"})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/private?token="+token, nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code, "query token only on /ws")

	req = httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
}

func TestAuthMiddlewareRevocation(t *testing.T) {
	store := tokenstore.NewMemory()
	token, claims, err := utils.GenerateToken(7, models.RoleClient)
	require.NoError(t, err)
	r := protected(AuthConfig{Revoker: store})

	require.NoError(t, store.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session has ended")
}

func TestRoleRequired(t *testing.T) {
	client, _, _ := utils.GenerateToken(1, models.RoleClient)
	owner, _, _ := utils.GenerateToken(2, models.RoleRestaurant)
	r := protected(AuthConfig{}, models.RoleRestaurant)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+client)
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+owner)
	assert.Equal(t, http.StatusOK, do(r, req).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := do(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = do(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/session", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodPost, "/session", nil)).Code)
	}
	w := do(r, httptest.NewRequest(http.MethodPost, "/session", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	assert.True(t, rl.Allow("10.0.0.9"), "other clients keep their own bucket")
}

func TestSecurityHeadersAndLogger(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), LoggerMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/x?a=1", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestLoggerOmitsSessionToken(t *testing.T) {
	var buf bytes.Buffer
	utils.InfoLogger.SetOutput(&buf)
	utils.InfoLogger.SetLevel(logrus.InfoLevel)
	t.Cleanup(func() {
		utils.InfoLogger.SetOutput(io.Discard)
		utils.InfoLogger.SetLevel(logrus.ErrorLevel)
	})

	token, _, err := utils.GenerateToken(7, models.RoleClient)
	require.NoError(t, err)

	r := gin.New()
	r.Use(LoggerMiddleware())
	r.GET("/ws", WebSocketAuthMiddleware(AuthConfig{CookieName: "token"}), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token+"&room=kitchen", nil)
	require.Equal(t, http.StatusOK, do(r, req).Code)

	line := buf.String()
	assert.Contains(t, line, "/ws?room=kitchen")
	assert.NotContains(t, line, token)
	assert.NotContains(t, line, "token=")
}
