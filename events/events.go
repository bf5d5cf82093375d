// Package events fans order lifecycle changes out to interested parties.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/food-delivery/models"
)

const (
	TypeOrderCreated = "order.created"
	TypeOrderStatus  = "order.status"
)

type Event struct {
	Type         string             `json:"type"`
	OrderID      uint               `json:"order_id"`
	RestaurantID uint               `json:"restaurant_id"`
	ClientID     uint               `json:"client_id"`
	Status       models.OrderStatus `json:"status"`
	At           time.Time          `json:"at"`
}

func FromOrder(typ string, o *models.Order, at time.Time) Event {
	return Event{
		Type:         typ,
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		ClientID:     o.ClientID,
		Status:       o.Status,
		At:           at.UTC(),
	}
}

// Publisher delivers an event. Publishing happens after the write has
// committed, so a failure never rolls the order back.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
