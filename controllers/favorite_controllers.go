package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/services"
	"github.com/yeremiapane/food-delivery/utils"
)

var (
	ErrAlreadyFavorite = utils.BadRequest("Restaurant already in favorites")
	ErrNotFavorite     = utils.BadRequest("Restaurant is not in favorites")
)

type FavoriteController struct {
	DB *gorm.DB
}

func NewFavoriteController(db *gorm.DB) *FavoriteController {
	return &FavoriteController{DB: db}
}

func (fc *FavoriteController) GetFavorites(c *gin.Context) {
	favorites := []models.Favorite{}
	err := fc.DB.WithContext(c.Request.Context()).
		Preload("Restaurant.Category").
		Where("client_id = ?", middlewares.UserID(c)).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of favorites", favorites)
}

func (fc *FavoriteController) AddFavorite(c *gin.Context) {
	var input struct {
		RestaurantID uint `json:"restaurant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}

	db := fc.DB.WithContext(c.Request.Context())
	var n int64
	if err := db.Model(&models.Restaurant{}).Where("id = ?", input.RestaurantID).Count(&n).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	if n == 0 {
		utils.HandleError(c, services.ErrRestaurantNotFound)
		return
	}

	favorite := models.Favorite{ClientID: middlewares.UserID(c), RestaurantID: input.RestaurantID}
	if err := db.Create(&favorite).Error; err != nil {
		if isDuplicate(err) {
			err = ErrAlreadyFavorite
		}
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Favorite added", favorite)
}

func (fc *FavoriteController) RemoveFavorite(c *gin.Context) {
	restaurantID, err := paramID(c, "restaurantId")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	res := fc.DB.WithContext(c.Request.Context()).
		Where("client_id = ? AND restaurant_id = ?", middlewares.UserID(c), restaurantID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		utils.HandleError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.HandleError(c, ErrNotFavorite)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Favorite removed", nil)
}
