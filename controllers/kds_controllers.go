package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/kds"
	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/services"
	"github.com/yeremiapane/food-delivery/utils"
)

type KDSController struct {
	DB       *gorm.DB
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts websocket handshakes from the given origins; an
// empty list or "*" accepts any origin.
func NewKDSController(db *gorm.DB, hub *kds.Hub, origins []string) *KDSController {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &KDSController{
		DB:  db,
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
	}
}

// KDSHandler -> websocket endpoint streaming order events
func (kc *KDSController) KDSHandler(c *gin.Context) {
	sub := kds.Subscriber{Role: middlewares.Role(c), UserID: middlewares.UserID(c)}
	switch sub.Role {
	case models.RoleRestaurant:
		r, err := services.RestaurantForAdmin(c.Request.Context(), kc.DB, sub.UserID)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		sub.RestaurantID = r.ID
	case models.RoleClient:
	default:
		utils.RespondError(c, http.StatusForbidden, middlewares.ErrForbidden)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	kc.Hub.Register(ws, sub)
	defer kc.Hub.Unregister(ws)
	utils.InfoLogger.Printf("websocket client connected: %s %d (%d open)", sub.Role, sub.UserID, kc.Hub.Count())

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
