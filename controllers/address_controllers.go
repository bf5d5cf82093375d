package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/services"
	"github.com/yeremiapane/food-delivery/utils"
)

type AddressController struct {
	DB *gorm.DB
}

func NewAddressController(db *gorm.DB) *AddressController {
	return &AddressController{DB: db}
}

type addressInput struct {
	Street     string `json:"street" binding:"required,max=255"`
	Number     string `json:"number" binding:"required,max=20"`
	Complement string `json:"complement" binding:"max=255"`
	District   string `json:"district" binding:"required,max=100"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"required,len=2"`
	ZipCode    string `json:"zip_code" binding:"required,max=10"`
}

func (in addressInput) apply(a *models.Address) {
	a.Street = in.Street
	a.Number = in.Number
	a.Complement = in.Complement
	a.District = in.District
	a.City = in.City
	a.State = in.State
	a.ZipCode = in.ZipCode
}

func (ac *AddressController) find(c *gin.Context) (*models.Address, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var a models.Address
	err = ac.DB.WithContext(c.Request.Context()).Where("id = ? AND client_id = ?", id, middlewares.UserID(c)).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (ac *AddressController) GetAddresses(c *gin.Context) {
	addresses := []models.Address{}
	if err := ac.DB.WithContext(c.Request.Context()).Where("client_id = ?", middlewares.UserID(c)).Order("id").Find(&addresses).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of addresses", addresses)
}

func (ac *AddressController) CreateAddress(c *gin.Context) {
	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	address := models.Address{ClientID: middlewares.UserID(c)}
	input.apply(&address)
	if err := ac.DB.WithContext(c.Request.Context()).Create(&address).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Address created", address)
}

func (ac *AddressController) UpdateAddress(c *gin.Context) {
	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	address, err := ac.find(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	input.apply(address)
	if err := ac.DB.WithContext(c.Request.Context()).Save(address).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Address updated", address)
}

// DeleteAddress is a soft delete; past orders still show the address.
func (ac *AddressController) DeleteAddress(c *gin.Context) {
	address, err := ac.find(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := ac.DB.WithContext(c.Request.Context()).Delete(address).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Address deleted", nil)
}
