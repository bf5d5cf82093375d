package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/tokenstore"
	"github.com/yeremiapane/food-delivery/utils"
)

var ErrInvalidCredentials = utils.Unauthorized("Invalid credentials")

type CookieConfig struct {
	Name   string
	Secure bool
}

type SessionController struct {
	DB      *gorm.DB
	Revoker tokenstore.Revoker
	Cookie  CookieConfig
}

func NewSessionController(db *gorm.DB, revoker tokenstore.Revoker, cookie CookieConfig) *SessionController {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &SessionController{DB: db, Revoker: revoker, Cookie: cookie}
}

func (sc *SessionController) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Cookie.Name, value, maxAge, "/", "", sc.Cookie.Secure, true)
}

// Login -> sets the session cookie and also returns the token for API clients
func (sc *SessionController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}

	var user models.User
	if err := sc.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.HandleError(c, ErrInvalidCredentials)
			return
		}
		utils.HandleError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.HandleError(c, ErrInvalidCredentials)
		return
	}

	token, claims, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	sc.setCookie(c, token, int(time.Until(claims.ExpiresAt.Time).Seconds()))

	utils.InfoLogger.WithField("user_id", user.ID).Info("Login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Show returns the user behind the current session.
func (sc *SessionController) Show(c *gin.Context) {
	var user models.User
	if err := sc.DB.First(&user, middlewares.UserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.HandleError(c, utils.Unauthorized("Unauthorized"))
			return
		}
		utils.HandleError(c, err)
		return
	}
	claims := middlewares.Claims(c)
	utils.RespondJSON(c, http.StatusOK, "Session", gin.H{
		"user":       user,
		"expires_at": claims.ExpiresAt.Time,
	})
}

// Logout revokes the token until it would have expired and clears the cookie.
func (sc *SessionController) Logout(c *gin.Context) {
	claims := middlewares.Claims(c)
	if sc.Revoker != nil && claims != nil {
		if err := sc.Revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			utils.HandleError(c, err)
			return
		}
	}
	sc.setCookie(c, "", -1)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
