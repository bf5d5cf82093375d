package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/food-delivery/middlewares"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/services"
	"github.com/yeremiapane/food-delivery/statemachine"
	"github.com/yeremiapane/food-delivery/utils"
)

// OrderDetail is an order plus the events the caller may fire on it next.
type OrderDetail struct {
	*models.Order
	Actions []statemachine.Event `json:"actions"`
}

type OrderController struct {
	Service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{Service: service}
}

// CreateOrder -> client places an order
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	order, err := oc.Service.Create(c.Request.Context(), middlewares.UserID(c), input)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

func (oc *OrderController) GetOrders(c *gin.Context) {
	page, err := oc.Service.List(c.Request.Context(), actor(c), services.OrderFilter{
		Status: c.Query("status"),
		Page:   utils.ParsePage(c),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", page)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	who := actor(c)
	order, err := oc.Service.Get(c.Request.Context(), who, id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order", OrderDetail{
		Order:   order,
		Actions: statemachine.Events(order.Status, who.Role),
	})
}

// Transition returns the handler firing event on /orders/:id.
func (oc *OrderController) Transition(event statemachine.Event, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		order, err := oc.Service.Transition(c.Request.Context(), actor(c), id, event)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, message, order)
	}
}

func (oc *OrderController) Approve() gin.HandlerFunc {
	return oc.Transition(statemachine.EventApprove, "Order approved")
}

func (oc *OrderController) Dispatch() gin.HandlerFunc {
	return oc.Transition(statemachine.EventDispatch, "Order dispatched")
}

func (oc *OrderController) Deliver() gin.HandlerFunc {
	return oc.Transition(statemachine.EventDeliver, "Order delivered")
}

func (oc *OrderController) Cancel() gin.HandlerFunc {
	return oc.Transition(statemachine.EventCancel, "Order canceled")
}

func (oc *OrderController) EvaluateOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	var input services.EvaluationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleBindError(c, err)
		return
	}
	order, err := oc.Service.Evaluate(c.Request.Context(), middlewares.UserID(c), id, input)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order evaluated", order)
}
