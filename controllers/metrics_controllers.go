package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/services"
	"github.com/yeremiapane/food-delivery/utils"
)

var ErrInvalidDate = utils.BadRequest("Dates must use the YYYY-MM-DD format")

type MetricsController struct {
	DB      *gorm.DB
	Service *services.MetricsService
}

func NewMetricsController(db *gorm.DB, service *services.MetricsService) *MetricsController {
	return &MetricsController{DB: db, Service: service}
}

// restaurantID resolves the caller's restaurant; every metric is scoped to it.
func (mc *MetricsController) restaurantID(c *gin.Context) (uint, bool) {
	r, err := services.RestaurantForAdmin(c.Request.Context(), mc.DB, middlewares.UserID(c))
	if err != nil {
		utils.HandleError(c, err)
		return 0, false
	}
	return r.ID, true
}

func (mc *MetricsController) amount(fn func(*services.MetricsService, *gin.Context, uint) (services.AmountMetric, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mc.restaurantID(c)
		if !ok {
			return
		}
		m, err := fn(mc.Service, c, id)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Metric", m)
	}
}

func (mc *MetricsController) DayOrdersAmount() gin.HandlerFunc {
	return mc.amount(func(s *services.MetricsService, c *gin.Context, id uint) (services.AmountMetric, error) {
		return s.DayOrdersAmount(c.Request.Context(), id)
	})
}

func (mc *MetricsController) MonthOrdersAmount() gin.HandlerFunc {
	return mc.amount(func(s *services.MetricsService, c *gin.Context, id uint) (services.AmountMetric, error) {
		return s.MonthOrdersAmount(c.Request.Context(), id)
	})
}

func (mc *MetricsController) MonthCanceledOrdersAmount() gin.HandlerFunc {
	return mc.amount(func(s *services.MetricsService, c *gin.Context, id uint) (services.AmountMetric, error) {
		return s.MonthCanceledOrdersAmount(c.Request.Context(), id)
	})
}

func (mc *MetricsController) MonthReceipt(c *gin.Context) {
	id, ok := mc.restaurantID(c)
	if !ok {
		return
	}
	m, err := mc.Service.MonthReceipt(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Metric", m)
}

func (mc *MetricsController) PopularProducts(c *gin.Context) {
	id, ok := mc.restaurantID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPopularLimit)))
	products, err := mc.Service.PopularProducts(c.Request.Context(), id, limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Popular products", products)
}

// DailyReceiptInPeriod reads ?from and ?to as local dates.
func (mc *MetricsController) DailyReceiptInPeriod(c *gin.Context) {
	from, err := services.ParseDay(c.Query("from"))
	if err != nil {
		utils.HandleError(c, ErrInvalidDate)
		return
	}
	to, err := services.ParseDay(c.Query("to"))
	if err != nil {
		utils.HandleError(c, ErrInvalidDate)
		return
	}
	id, ok := mc.restaurantID(c)
	if !ok {
		return
	}
	days, err := mc.Service.DailyReceiptInPeriod(c.Request.Context(), id, from, to)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily receipt", days)
}
