// Package statemachine holds the order lifecycle rules.
package statemachine

import (
	"errors"
	"time"

	"github.com/yeremiapane/food-delivery/models"
)

type Event string

const (
	EventApprove  Event = "approve"
	EventDispatch Event = "dispatch"
	EventDeliver  Event = "deliver"
	EventCancel   Event = "cancel"
)

var ErrNotAllowed = errors.New("Not allowed")

// Transition is one legal edge and the roles allowed to fire it.
type Transition struct {
	From   models.OrderStatus `json:"from"`
	Event  Event              `json:"event"`
	To     models.OrderStatus `json:"to"`
	Actors []string           `json:"actors"`
}

var transitions = []Transition{
	{From: models.StatusPending, Event: EventApprove, To: models.StatusPreparing, Actors: []string{models.RoleRestaurant}},
	{From: models.StatusPreparing, Event: EventDispatch, To: models.StatusRouting, Actors: []string{models.RoleRestaurant}},
	{From: models.StatusRouting, Event: EventDeliver, To: models.StatusDelivered, Actors: []string{models.RoleRestaurant}},
	{From: models.StatusPending, Event: EventCancel, To: models.StatusCanceled, Actors: []string{models.RoleRestaurant, models.RoleClient}},
	{From: models.StatusPreparing, Event: EventCancel, To: models.StatusCanceled, Actors: []string{models.RoleRestaurant}},
}

type key struct {
	from  models.OrderStatus
	event Event
	actor string
}

var lookup = func() map[key]models.OrderStatus {
	m := make(map[key]models.OrderStatus)
	for _, t := range transitions {
		for _, a := range t.Actors {
			m[key{t.From, t.Event, a}] = t.To
		}
	}
	return m
}()

// Next returns the status reached when actor fires event on an order in
// status from, or ErrNotAllowed.
func Next(from models.OrderStatus, event Event, actor string) (models.OrderStatus, error) {
	to, ok := lookup[key{from, event, actor}]
	if !ok {
		return "", ErrNotAllowed
	}
	return to, nil
}

// Events lists what actor may do next on an order in status from.
func Events(from models.OrderStatus, actor string) []Event {
	events := []Event{}
	for _, t := range transitions {
		if t.From != from {
			continue
		}
		for _, a := range t.Actors {
			if a == actor {
				events = append(events, t.Event)
				break
			}
		}
	}
	return events
}

// Column is the timestamp column written when an order enters status.
func Column(status models.OrderStatus) string {
	switch status {
	case models.StatusPreparing:
		return "prepared_at"
	case models.StatusRouting:
		return "routed_at"
	case models.StatusDelivered:
		return "delivered_at"
	case models.StatusCanceled:
		return "canceled_at"
	}
	return ""
}

// Stamp moves o to status and records the matching timestamp. A timestamp
// that is already set is never overwritten.
func Stamp(o *models.Order, status models.OrderStatus, now time.Time) error {
	var field **time.Time
	switch status {
	case models.StatusPreparing:
		field = &o.PreparedAt
	case models.StatusRouting:
		field = &o.RoutedAt
	case models.StatusDelivered:
		field = &o.DeliveredAt
	case models.StatusCanceled:
		field = &o.CanceledAt
	default:
		return ErrNotAllowed
	}
	if *field != nil {
		return ErrNotAllowed
	}
	*field = &now
	o.Status = status
	return nil
}
