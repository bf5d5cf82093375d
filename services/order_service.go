package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/events"
	"github.com/yeremiapane/food-delivery/hours"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/statemachine"
	"github.com/yeremiapane/food-delivery/telemetry"
	"github.com/yeremiapane/food-delivery/utils"
)

type OrderItemInput struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gte=1"`
	Observation string `json:"observation" binding:"max=255"`
}

type CreateOrderInput struct {
	RestaurantID  uint             `json:"restaurant_id" binding:"required"`
	AddressID     uint             `json:"address_id" binding:"required"`
	PaymentMethod string           `json:"payment_method" binding:"required,oneof=CASH CARD PIX"`
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

type EvaluationInput struct {
	Grade   int    `json:"grade" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

type OrderFilter struct {
	Status string
	Page   utils.Page
}

type OrderService struct {
	DB        *gorm.DB
	Publisher events.Publisher
	Now       func() time.Time
}

func NewOrderService(db *gorm.DB, pub events.Publisher) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{DB: db, Publisher: pub, Now: time.Now}
}

func (s *OrderService) now() time.Time {
	return s.Now().UTC()
}

func (s *OrderService) publish(ctx context.Context, typ string, o *models.Order, at time.Time) {
	if err := s.Publisher.Publish(ctx, events.FromOrder(typ, o, at)); err != nil {
		utils.ErrorLogger.WithField("order_id", o.ID).Errorf("publish %s: %v", typ, err)
	}
}

func validPayment(m string) bool {
	return m == models.PaymentCash || m == models.PaymentCard || m == models.PaymentPix
}

// Create places a PENDING order. Item prices are copied from the products
// at this moment and the total is their sum plus the restaurant's tax.
func (s *OrderService) Create(ctx context.Context, clientID uint, in CreateOrderInput) (*models.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "OrderService.Create")
	defer span.End()

	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	if !validPayment(in.PaymentMethod) {
		return nil, ErrInvalidPayment
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	now := s.now()
	var order models.Order

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.Preload("Hours").First(&restaurant, in.RestaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRestaurantNotFound
			}
			return err
		}
		if !hours.OpenAt(restaurant.Hours, now) {
			return ErrClosedForOrders
		}

		var address models.Address
		if err := tx.Where("id = ? AND client_id = ?", in.AddressID, clientID).First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return err
		}

		ids := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.ProductID)
		}
		var products []models.Product
		if err := tx.Where("id IN ? AND restaurant_id = ?", ids, restaurant.ID).Find(&products).Error; err != nil {
			return err
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		order = models.Order{
			ClientID:      clientID,
			RestaurantID:  restaurant.ID,
			AddressID:     address.ID,
			PaymentMethod: in.PaymentMethod,
			Status:        models.StatusPending,
			Tax:           restaurant.Tax,
			Total:         decimal.Zero,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		subtotal := decimal.Zero
		for _, it := range in.Items {
			p, ok := byID[it.ProductID]
			if !ok {
				return ErrProductNotFound
			}
			item := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   p.ID,
				Price:       p.Price,
				Quantity:    it.Quantity,
				Observation: it.Observation,
			}
			subtotal = subtotal.Add(item.Subtotal())
			items = append(items, item)
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		order.Total = subtotal.Add(restaurant.Tax)
		if err := tx.Model(&order).Update("total", order.Total).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("order.id", int(order.ID)))
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":      order.ID,
		"restaurant_id": order.RestaurantID,
		"total":         order.Total.StringFixed(2),
	}).Info("Order created")
	s.publish(ctx, events.TypeOrderCreated, &order, now)
	return &order, nil
}

// authorize checks that actor may see the order.
func (s *OrderService) authorize(ctx context.Context, tx *gorm.DB, actor Actor, o *models.Order) error {
	switch actor.Role {
	case models.RoleClient:
		if o.ClientID != actor.UserID {
			return ErrNotAllowed
		}
	case models.RoleRestaurant:
		r, err := RestaurantForAdmin(ctx, tx, actor.UserID)
		if errors.Is(err, ErrRestaurantNotFound) {
			return ErrNotAllowed
		}
		if err != nil {
			return err
		}
		if o.RestaurantID != r.ID {
			return ErrNotAllowed
		}
	default:
		return ErrNotAllowed
	}
	return nil
}

// Transition fires event on the order. The write only lands if the row is
// still in the status that was read, so a concurrent duplicate loses.
func (s *OrderService) Transition(ctx context.Context, actor Actor, orderID uint, event statemachine.Event) (*models.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "OrderService.Transition")
	defer span.End()
	span.SetAttributes(attribute.String("order.event", string(event)), attribute.Int("order.id", int(orderID)))

	now := s.now()
	var order models.Order

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if err := s.authorize(ctx, tx, actor, &order); err != nil {
			return err
		}

		var week []models.Hour
		if err := tx.Where("restaurant_id = ?", order.RestaurantID).Find(&week).Error; err != nil {
			return err
		}
		if !hours.OpenAt(week, now) {
			return ErrClosedForStatus
		}

		to, err := statemachine.Next(order.Status, event, actor.Role)
		if err != nil {
			return ErrNotAllowed
		}
		from := order.Status
		if err := statemachine.Stamp(&order, to, now); err != nil {
			return ErrNotAllowed
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Updates(map[string]interface{}{
				"status":                to,
				statemachine.Column(to): now,
				"updated_at":            now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotAllowed
		}
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"event":    event,
		"status":   order.Status,
		"actor":    actor.Role,
	}).Info("Order status changed")
	s.publish(ctx, events.TypeOrderStatus, &order, now)
	return &order, nil
}

// Evaluate stores the client's rating of a delivered order, once.
func (s *OrderService) Evaluate(ctx context.Context, clientID, orderID uint, in EvaluationInput) (*models.Order, error) {
	if in.Grade < 1 || in.Grade > 5 {
		return nil, ErrInvalidGrade
	}

	now := s.now()
	var order models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.ClientID != clientID {
			return ErrNotAllowed
		}
		if order.Status != models.StatusDelivered {
			return ErrOnlyDelivered
		}
		if order.Evaluated() {
			return ErrAlreadyEvaluated
		}

		var comment *string
		if in.Comment != "" {
			comment = &in.Comment
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND grade IS NULL", order.ID).
			Updates(map[string]interface{}{
				"grade":        in.Grade,
				"comment":      comment,
				"evaluated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyEvaluated
		}
		order.Grade = &in.Grade
		order.Comment = comment
		order.EvaluatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func detailScope(db *gorm.DB) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return db.
		Preload("Items.Product", unscoped).
		Preload("Address", unscoped).
		Preload("Restaurant").
		Preload("Client")
}

// Get returns one order with its items, visible to its client or its
// restaurant.
func (s *OrderService) Get(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	db := s.DB.WithContext(ctx)
	var order models.Order
	if err := db.Scopes(detailScope).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := s.authorize(ctx, db, actor, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// List pages through the actor's orders, newest first.
func (s *OrderService) List(ctx context.Context, actor Actor, f OrderFilter) (utils.Paginated, error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&models.Order{})

	switch actor.Role {
	case models.RoleClient:
		q = q.Where("client_id = ?", actor.UserID)
	case models.RoleRestaurant:
		r, err := RestaurantForAdmin(ctx, db, actor.UserID)
		if err != nil {
			return utils.Paginated{}, err
		}
		q = q.Where("restaurant_id = ?", r.ID)
	default:
		return utils.Paginated{}, ErrNotAllowed
	}

	if f.Status != "" {
		status := models.OrderStatus(f.Status)
		if !models.ValidStatus(status) {
			return utils.Paginated{}, ErrInvalidStatus
		}
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})
	page := utils.NewPage(f.Page.Page, f.Page.PerPage)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return utils.Paginated{}, err
	}

	orders := []models.Order{}
	err := q.Scopes(detailScope, page.Scope).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return utils.Paginated{}, err
	}
	return page.Wrap(orders, total), nil
}

type EvaluationView struct {
	OrderID     uint      `json:"order_id"`
	ClientName  string    `json:"client_name"`
	Grade       int       `json:"grade"`
	Comment     *string   `json:"comment"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Evaluations lists a restaurant's ratings, newest first.
func (s *OrderService) Evaluations(ctx context.Context, restaurantID uint, page utils.Page) (utils.Paginated, error) {
	q := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("orders.restaurant_id = ? AND orders.grade IS NOT NULL", restaurantID).
		Session(&gorm.Session{})
	page = utils.NewPage(page.Page, page.PerPage)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return utils.Paginated{}, err
	}

	views := []EvaluationView{}
	err := q.Select("orders.id AS order_id, users.name AS client_name, orders.grade, orders.comment, orders.evaluated_at").
		Joins("JOIN users ON users.id = orders.client_id").
		Order("orders.evaluated_at DESC").
		Scopes(page.Scope).
		Scan(&views).Error
	if err != nil {
		return utils.Paginated{}, err
	}
	return page.Wrap(views, total), nil
}
