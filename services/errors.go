package services

import "github.com/yeremiapane/food-delivery/utils"

var (
	ErrOrderNotFound      = utils.BadRequest("Order not found")
	ErrNotAllowed         = utils.BadRequest("Not allowed")
	ErrClosedForStatus    = utils.BadRequest("Restaurant is not open to update order status.")
	ErrClosedForOrders    = utils.BadRequest("Restaurant is not open to receive orders")
	ErrRestaurantNotFound = utils.BadRequest("Restaurant not found")
	ErrAddressNotFound    = utils.BadRequest("Address not found")
	ErrProductNotFound    = utils.BadRequest("Product not found")
	ErrNoItems            = utils.BadRequest("Order must have at least one item")
	ErrInvalidQuantity    = utils.BadRequest("Quantity must be at least 1")
	ErrInvalidPayment     = utils.BadRequest("Payment method must be one of CASH, CARD or PIX")
	ErrInvalidStatus      = utils.BadRequest("Invalid order status")
	ErrOnlyDelivered      = utils.BadRequest("Only delivered orders can be evaluated")
	ErrAlreadyEvaluated   = utils.BadRequest("Order already evaluated")
	ErrInvalidGrade       = utils.BadRequest("Grade must be between 1 and 5")
	ErrDateRange          = utils.BadRequest("The interval of the date range cannot be greater than 7 days.")
	ErrDateOrder          = utils.BadRequest("The start date must not be after the end date.")
)
