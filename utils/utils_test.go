package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, h gin.HandlerFunc) (int, JSONResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	h(c)

	var body JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHandleErrorAppError(t *testing.T) {
	code, body := run(t, func(c *gin.Context) {
		HandleError(c, BadRequest("Not allowed"))
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, body.Status)
	assert.Equal(t, "Not allowed", body.Message)
}

func TestHandleErrorWrappedAppError(t *testing.T) {
	code, _ := run(t, func(c *gin.Context) {
		HandleError(c, errors.Join(errors.New("ctx"), Forbidden("nope")))
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestHandleErrorValidation(t *testing.T) {
	type input struct {
		Name  string `json:"name" binding:"required"`
		Grade int    `json:"grade" binding:"gte=1,lte=5"`
	}
	code, body := run(t, func(c *gin.Context) {
		c.Request = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"grade":9}`))
		c.Request.Header.Set("Content-Type", "application/json")
		var in input
		err := c.ShouldBindJSON(&in)
		require.Error(t, err)
		HandleBindError(c, err)
	})
	assert.Equal(t, http.StatusBadRequest, code)
	fields := body.Data.(map[string]interface{})["fields"].(map[string]interface{})
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be less than or equal to 5", fields["grade"])
}

func TestHandleErrorUnknownIs500(t *testing.T) {
	code, body := run(t, func(c *gin.Context) {
		HandleError(c, errors.New("disk on fire"))
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret", time.Hour)
	token, claims, err := GenerateToken(42, "client")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID())
	assert.Equal(t, "client", parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)

	_, err = ParseToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	InitJWT("test-secret", time.Hour)
	defer InitJWT("", time.Hour)
	jwtTTL = -time.Minute
	token, _, err := GenerateToken(1, "client")
	require.NoError(t, err)
	jwtTTL = time.Hour

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, PerPage: 10}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 3, PerPage: 50}, NewPage(3, 500))
	assert.Equal(t, 20, NewPage(3, 10).Offset())

	wrapped := NewPage(1, 10).Wrap([]int{}, 21)
	assert.Equal(t, 3, wrapped.TotalPages)
}
