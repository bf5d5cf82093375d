package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/services"
	"github.com/yeremiapane/food-delivery/storage"
	"github.com/yeremiapane/food-delivery/utils"
)

var ErrInvalidPrice = utils.BadRequest("Price must be greater than zero")

type ProductController struct {
	DB    *gorm.DB
	Store storage.Store
}

func NewProductController(db *gorm.DB, store storage.Store) *ProductController {
	return &ProductController{DB: db, Store: store}
}

type productInput struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price"`
}

// find loads a product of the caller's restaurant. Products of other
// restaurants look the same as missing ones.
func (pc *ProductController) find(c *gin.Context) (*models.Product, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	r, err := services.RestaurantForAdmin(c.Request.Context(), pc.DB, middlewares.UserID(c))
	if err != nil {
		return nil, err
	}
	var p models.Product
	err = pc.DB.WithContext(c.Request.Context()).Where("id = ? AND restaurant_id = ?", id, r.ID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	if !input.Price.IsPositive() {
		utils.HandleError(c, ErrInvalidPrice)
		return
	}
	r, err := services.RestaurantForAdmin(c.Request.Context(), pc.DB, middlewares.UserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	product := models.Product{
		RestaurantID: r.ID,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price.Round(2),
	}
	if err := pc.DB.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct only affects future orders; placed orders keep their
// snapshotted price.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	if !input.Price.IsPositive() {
		utils.HandleError(c, ErrInvalidPrice)
		return
	}
	product, err := pc.find(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	err = pc.DB.WithContext(c.Request.Context()).Model(product).Updates(map[string]interface{}{
		"name":        input.Name,
		"description": input.Description,
		"price":       input.Price.Round(2),
	}).Error
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price.Round(2)
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	product, err := pc.find(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := pc.DB.WithContext(c.Request.Context()).Delete(product).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product deleted", nil)
}

func (pc *ProductController) UploadImage(c *gin.Context) {
	product, err := pc.find(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	url, ok := uploadImage(c, pc.Store, "products")
	if !ok {
		return
	}
	old := imageOf(product.Image)
	if err := pc.DB.WithContext(c.Request.Context()).Model(product).Update("image", url).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	replaceImage(c, pc.Store, old)
	product.Image = &url
	utils.RespondJSON(c, http.StatusOK, "Image uploaded", product)
}
