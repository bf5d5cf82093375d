package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/utils"
)

var ErrEmailTaken = utils.BadRequest("Email already registered")

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Register creates a client or a restaurant admin account.
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,max=255"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone" binding:"max=30"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"omitempty,oneof=client restaurant"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleClient
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    strings.ToLower(req.Email),
		Phone:    req.Phone,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			utils.HandleError(c, ErrEmailTaken)
			return
		}
		utils.HandleError(c, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered", user)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	var user models.User
	if err := uc.DB.First(&user, middlewares.UserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.HandleError(c, utils.BadRequest("User not found"))
			return
		}
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", user)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req struct {
		Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
		Phone    *string `json:"phone" binding:"omitempty,max=30"`
		Password *string `json:"password" binding:"omitempty,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleBindError(c, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, middlewares.UserID(c)).Error; err != nil {
		utils.HandleError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		user.Name = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
		user.Phone = *req.Phone
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		updates["password"] = string(hashed)
	}
	if len(updates) > 0 {
		if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
			utils.HandleError(c, err)
			return
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", user)
}
