package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/hours"
	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/services"
	"github.com/yeremiapane/food-delivery/storage"
	"github.com/yeremiapane/food-delivery/utils"
)

var (
	ErrRestaurantExists = utils.BadRequest("Restaurant already registered for this user")
	ErrNegativeTax      = utils.BadRequest("Tax cannot be negative")
)

type RestaurantController struct {
	DB     *gorm.DB
	Store  storage.Store
	Orders *services.OrderService
	Now    func() time.Time
}

func NewRestaurantController(db *gorm.DB, store storage.Store, orders *services.OrderService) *RestaurantController {
	return &RestaurantController{DB: db, Store: store, Orders: orders, Now: time.Now}
}

type restaurantInput struct {
	CategoryID   uint            `json:"category_id" binding:"required"`
	Name         string          `json:"name" binding:"required,max=255"`
	Description  string          `json:"description" binding:"max=2000"`
	DeliveryTime int             `json:"delivery_time" binding:"required,gte=1"`
	Tax          decimal.Decimal `json:"tax"`
}

type hourInput struct {
	Weekday  int  `json:"weekday" binding:"gte=0,lte=6"`
	Open     bool `json:"open"`
	OpenedAt int  `json:"opened_at"`
	ClosedAt int  `json:"closed_at"`
}

// RestaurantSummary is a list entry with its current open status.
type RestaurantSummary struct {
	models.Restaurant
	Status hours.Status `json:"status"`
}

type RestaurantDetail struct {
	models.Restaurant
	Status hours.Status              `json:"status"`
	Rating services.RestaurantRating `json:"rating"`
}

func (rc *RestaurantController) checkCategory(c *gin.Context, id uint) error {
	var n int64
	if err := rc.DB.WithContext(c.Request.Context()).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (rc *RestaurantController) own(c *gin.Context) (*models.Restaurant, error) {
	return services.RestaurantForAdmin(c.Request.Context(), rc.DB, middlewares.UserID(c))
}

// GetAllRestaurants -> paginated, filtered by name and category
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	q := rc.DB.WithContext(c.Request.Context()).Model(&models.Restaurant{})
	if name := c.Query("name"); name != "" {
		q = q.Where("name LIKE ?", "%"+name+"%")
	}
	if v := c.Query("categoryId"); v != "" {
		categoryID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			utils.HandleError(c, utils.BadRequest("Invalid categoryId"))
			return
		}
		q = q.Where("category_id = ?", categoryID)
	}
	q = q.Session(&gorm.Session{})

	page := utils.ParsePage(c)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.HandleError(c, err)
		return
	}

	var restaurants []models.Restaurant
	if err := q.Preload("Category").Preload("Hours").Scopes(page.Scope).Order("name").Find(&restaurants).Error; err != nil {
		utils.HandleError(c, err)
		return
	}

	now := rc.Now()
	items := make([]RestaurantSummary, 0, len(restaurants))
	for _, r := range restaurants {
		items = append(items, RestaurantSummary{Restaurant: r, Status: hours.Evaluate(r.Hours, now)})
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", page.Wrap(items, total))
}

func (rc *RestaurantController) detail(c *gin.Context, r *models.Restaurant) (RestaurantDetail, error) {
	ctx := c.Request.Context()
	if err := rc.DB.WithContext(ctx).Preload("Category").Preload("Hours", func(db *gorm.DB) *gorm.DB {
		return db.Order("weekday")
	}).First(r, r.ID).Error; err != nil {
		return RestaurantDetail{}, err
	}
	rating, err := services.Rating(ctx, rc.DB, r.ID)
	if err != nil {
		return RestaurantDetail{}, err
	}
	return RestaurantDetail{Restaurant: *r, Status: hours.Evaluate(r.Hours, rc.Now()), Rating: rating}, nil
}

func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	var r models.Restaurant
	if err := rc.DB.WithContext(c.Request.Context()).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrRestaurantNotFound
		}
		utils.HandleError(c, err)
		return
	}
	out, err := rc.detail(c, &r)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant", out)
}

// GetProducts lists the products that are still on sale.
func (rc *RestaurantController) GetProducts(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	products := []models.Product{}
	if err := rc.DB.WithContext(c.Request.Context()).Where("restaurant_id = ?", id).Order("name").Find(&products).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

func (rc *RestaurantController) GetEvaluations(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	page, err := rc.Orders.Evaluations(c.Request.Context(), id, utils.ParsePage(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of evaluations", page)
}

func (rc *RestaurantController) GetMyRestaurant(c *gin.Context) {
	r, err := rc.own(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	out, err := rc.detail(c, r)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant", out)
}

// CreateRestaurant registers the admin's restaurant with every day closed.
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var input restaurantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	if input.Tax.IsNegative() {
		utils.HandleError(c, ErrNegativeTax)
		return
	}
	if err := rc.checkCategory(c, input.CategoryID); err != nil {
		utils.HandleError(c, err)
		return
	}

	restaurant := models.Restaurant{
		AdminID:      middlewares.UserID(c),
		CategoryID:   input.CategoryID,
		Name:         input.Name,
		Description:  input.Description,
		DeliveryTime: input.DeliveryTime,
		Tax:          input.Tax.Round(2),
	}
	err := rc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Restaurant{}).Where("admin_id = ?", restaurant.AdminID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrRestaurantExists
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			if isDuplicate(err) {
				return ErrRestaurantExists
			}
			return err
		}
		week := hours.DefaultWeek(restaurant.ID)
		if err := tx.Create(&week).Error; err != nil {
			return err
		}
		restaurant.Hours = week
		return nil
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant %d created by user %d", restaurant.ID, restaurant.AdminID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	var input restaurantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	if input.Tax.IsNegative() {
		utils.HandleError(c, ErrNegativeTax)
		return
	}
	r, err := rc.own(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if err := rc.checkCategory(c, input.CategoryID); err != nil {
		utils.HandleError(c, err)
		return
	}

	err = rc.DB.WithContext(c.Request.Context()).Model(r).Updates(map[string]interface{}{
		"category_id":   input.CategoryID,
		"name":          input.Name,
		"description":   input.Description,
		"delivery_time": input.DeliveryTime,
		"tax":           input.Tax.Round(2),
	}).Error
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	r.CategoryID = input.CategoryID
	r.Name = input.Name
	r.Description = input.Description
	r.DeliveryTime = input.DeliveryTime
	r.Tax = input.Tax.Round(2)
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", r)
}

// UpdateHours replaces the whole week in one go.
func (rc *RestaurantController) UpdateHours(c *gin.Context) {
	var input struct {
		Hours []hourInput `json:"hours" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	r, err := rc.own(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	week := make([]models.Hour, 0, len(input.Hours))
	for _, h := range input.Hours {
		week = append(week, models.Hour{
			RestaurantID: r.ID,
			Weekday:      h.Weekday,
			Open:         h.Open,
			OpenedAt:     h.OpenedAt,
			ClosedAt:     h.ClosedAt,
		})
	}
	if err := hours.Validate(week); err != nil {
		utils.HandleError(c, utils.BadRequest(err.Error()))
		return
	}

	err = rc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("restaurant_id = ?", r.ID).Delete(&models.Hour{}).Error; err != nil {
			return err
		}
		return tx.Create(&week).Error
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hours updated", gin.H{
		"hours":  week,
		"status": hours.Evaluate(week, rc.Now()),
	})
}

func (rc *RestaurantController) UploadImage(c *gin.Context) {
	r, err := rc.own(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	url, ok := uploadImage(c, rc.Store, "restaurants")
	if !ok {
		return
	}
	old := imageOf(r.Image)
	if err := rc.DB.WithContext(c.Request.Context()).Model(r).Update("image", url).Error; err != nil {
		utils.HandleError(c, err)
		return
	}
	replaceImage(c, rc.Store, old)
	r.Image = &url
	utils.RespondJSON(c, http.StatusOK, "Image uploaded", r)
}

// uploadImage stores the "image" form file. It writes the error response
// itself and reports false on failure.
func uploadImage(c *gin.Context, store storage.Store, folder string) (string, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		utils.HandleError(c, utils.BadRequest(storage.ErrNoFile.Error()))
		return "", false
	}
	url, err := storage.Upload(c.Request.Context(), store, folder, fh)
	if err != nil {
		if storage.IsUserError(err) {
			err = utils.BadRequest(err.Error())
		}
		utils.HandleError(c, err)
		return "", false
	}
	return url, true
}

// imageOf copies the stored URL out of the model. gorm writes updated
// columns back through the model's pointers.
func imageOf(image *string) string {
	if image == nil {
		return ""
	}
	return *image
}

// replaceImage removes a superseded image; failures only get logged.
func replaceImage(c *gin.Context, store storage.Store, old string) {
	if old == "" {
		return
	}
	if err := store.Delete(c.Request.Context(), old); err != nil {
		utils.ErrorLogger.Printf("Failed to delete old image %s: %v", old, err)
	}
}
