package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/controllers"
	"github.com/yeremiapane/food-delivery/events"
	"github.com/yeremiapane/food-delivery/kds"
	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/services"
	"github.com/yeremiapane/food-delivery/storage"
	"github.com/yeremiapane/food-delivery/tokenstore"
)

// Deps is everything the HTTP layer is built from.
type Deps struct {
	DB        *gorm.DB
	Revoker   tokenstore.Revoker
	Store     storage.Store
	Publisher events.Publisher
	Hub       *kds.Hub

	Cookie      controllers.CookieConfig
	CORSOrigins []string
	// UploadDir is served at /uploads when images are kept on local disk.
	UploadDir string

	LoginRate  float64
	LoginBurst int
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())

	if d.Hub == nil {
		d.Hub = kds.NewHub()
	}
	if d.Revoker == nil {
		d.Revoker = tokenstore.NewMemory()
	}
	if d.LoginRate <= 0 {
		d.LoginRate = 0.2
	}
	if d.LoginBurst <= 0 {
		d.LoginBurst = 5
	}

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	orderService := services.NewOrderService(d.DB, d.Publisher)
	metricsService := services.NewMetricsService(d.DB)

	sessionCtrl := controllers.NewSessionController(d.DB, d.Revoker, d.Cookie)
	userCtrl := controllers.NewUserController(d.DB)
	categoryCtrl := controllers.NewCategoryController(d.DB)
	restaurantCtrl := controllers.NewRestaurantController(d.DB, d.Store, orderService)
	productCtrl := controllers.NewProductController(d.DB, d.Store)
	addressCtrl := controllers.NewAddressController(d.DB)
	favoriteCtrl := controllers.NewFavoriteController(d.DB)
	orderCtrl := controllers.NewOrderController(orderService)
	metricsCtrl := controllers.NewMetricsController(d.DB, metricsService)
	kdsCtrl := controllers.NewKDSController(d.DB, d.Hub, d.CORSOrigins)

	authCfg := middlewares.AuthConfig{CookieName: d.Cookie.Name, Revoker: d.Revoker}
	auth := middlewares.AuthMiddleware(authCfg)
	restaurantOnly := middlewares.RoleRequired(models.RoleRestaurant)
	clientOnly := middlewares.RoleRequired(models.RoleClient)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	loginLimiter := middlewares.NewRateLimiter(d.LoginRate, d.LoginBurst)
	r.POST("/session", loginLimiter.RateLimit(), sessionCtrl.Login)
	r.POST("/user", userCtrl.Register)

	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/categories/:id", categoryCtrl.GetCategoryByID)

	r.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	r.GET("/restaurants/:id", restaurantCtrl.GetRestaurantByID)
	r.GET("/restaurants/:id/products", restaurantCtrl.GetProducts)
	r.GET("/restaurants/:id/evaluations", restaurantCtrl.GetEvaluations)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	authed := r.Group("/")
	authed.Use(auth)
	{
		authed.GET("/session", sessionCtrl.Show)
		authed.DELETE("/session", sessionCtrl.Logout)
		authed.GET("/user", userCtrl.GetProfile)
		authed.PUT("/user", userCtrl.UpdateProfile)

		authed.GET("/orders", orderCtrl.GetOrders)
		authed.GET("/orders/:id", orderCtrl.GetOrderByID)

		// the lifecycle table decides which role may fire each event
		authed.PATCH("/orders/:id/approve", orderCtrl.Approve())
		authed.PATCH("/orders/:id/dispatch", orderCtrl.Dispatch())
		authed.PATCH("/orders/:id/deliver", orderCtrl.Deliver())
		authed.PATCH("/orders/:id/cancel", orderCtrl.Cancel())
	}

	// Restaurant admin
	admin := r.Group("/")
	admin.Use(auth, restaurantOnly)
	{
		admin.POST("/categories", categoryCtrl.CreateCategory)

		admin.GET("/restaurants/me", restaurantCtrl.GetMyRestaurant)
		admin.POST("/restaurants", restaurantCtrl.CreateRestaurant)
		admin.PUT("/restaurants/me", restaurantCtrl.UpdateRestaurant)
		admin.PUT("/restaurants/me/hours", restaurantCtrl.UpdateHours)
		admin.POST("/restaurants/me/image", restaurantCtrl.UploadImage)

		admin.POST("/products", productCtrl.CreateProduct)
		admin.PUT("/products/:id", productCtrl.UpdateProduct)
		admin.DELETE("/products/:id", productCtrl.DeleteProduct)
		admin.POST("/products/:id/image", productCtrl.UploadImage)

		metrics := admin.Group("/metrics")
		metrics.GET("/day-orders-amount", metricsCtrl.DayOrdersAmount())
		metrics.GET("/month-orders-amount", metricsCtrl.MonthOrdersAmount())
		metrics.GET("/month-canceled-orders-amount", metricsCtrl.MonthCanceledOrdersAmount())
		metrics.GET("/month-receipt", metricsCtrl.MonthReceipt)
		metrics.GET("/popular-products", metricsCtrl.PopularProducts)
		metrics.GET("/daily-receipt-in-period", metricsCtrl.DailyReceiptInPeriod)
	}

	// Client
	client := r.Group("/")
	client.Use(auth, clientOnly)
	{
		client.GET("/addresses", addressCtrl.GetAddresses)
		client.POST("/addresses", addressCtrl.CreateAddress)
		client.PUT("/addresses/:id", addressCtrl.UpdateAddress)
		client.DELETE("/addresses/:id", addressCtrl.DeleteAddress)

		client.GET("/favorites", favoriteCtrl.GetFavorites)
		client.POST("/favorites", favoriteCtrl.AddFavorite)
		client.DELETE("/favorites/:restaurantId", favoriteCtrl.RemoveFavorite)

		client.POST("/orders", orderCtrl.CreateOrder)
		client.POST("/orders/:id/evaluation", orderCtrl.EvaluateOrder)
	}

	// Order feed; browsers pass the token as ?token=
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(authCfg), kdsCtrl.KDSHandler)

	return r
}
