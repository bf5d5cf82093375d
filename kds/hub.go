// Package kds pushes order events to connected websocket clients.
package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/food-delivery/events"
	"github.com/yeremiapane/food-delivery/models"
	"github.com/yeremiapane/food-delivery/utils"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Subscriber describes who is on the other end of a connection.
// RestaurantID is set for restaurant admins only.
type Subscriber struct {
	Role         string
	UserID       uint
	RestaurantID uint
}

func (s Subscriber) wants(e events.Event) bool {
	switch s.Role {
	case models.RoleRestaurant:
		return s.RestaurantID != 0 && s.RestaurantID == e.RestaurantID
	case models.RoleClient:
		return s.UserID == e.ClientID
	}
	return false
}

type Hub struct {
	mutex   sync.Mutex
	clients map[Conn]Subscriber
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Conn]Subscriber)}
}

func (h *Hub) Register(conn Conn, sub Subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = sub
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish sends e to every subscriber allowed to see it. Connections that
// fail a write are dropped.
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	data, err := json.Marshal(Message{Event: e.Type, Data: e})
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, sub := range h.clients {
		if !sub.wants(e) {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending message to %s %d: %v", sub.Role, sub.UserID, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
	return nil
}
