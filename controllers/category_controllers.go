package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/utils"
)

var (
	ErrCategoryNotFound = utils.BadRequest("Category not found")
	ErrCategoryExists   = utils.BadRequest("Category already exists")
)

type CategoryController struct {
	DB *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{DB: db}
}

func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	categories := []models.Category{}
	if err := cc.DB.Order("name").Find(&categories).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

func (cc *CategoryController) GetCategoryByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	var category models.Category
	if err := cc.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrCategoryNotFound
		}
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category", category)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}

	category := models.Category{Name: input.Name}
	if err := cc.DB.Create(&category).Error; err != nil {
		if isDuplicate(err) {
			err = ErrCategoryExists
		}
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}
