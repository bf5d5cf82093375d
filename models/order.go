package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPreparing OrderStatus = "PREPARING"
	StatusRouting   OrderStatus = "ROUTING"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCanceled  OrderStatus = "CANCELED"
)

// ValidStatus reports whether s is one of the lifecycle statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusRouting, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

const (
	PaymentCash = "CASH"
	PaymentCard = "CARD"
	PaymentPix  = "PIX"
)

// Order is never deleted. Each transition timestamp is written once, by the
// transition that produces it.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ClientID      uint            `gorm:"not null;index" json:"client_id"`
	Client        *User           `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"client,omitempty"`
	RestaurantID  uint            `gorm:"not null;index" json:"restaurant_id"`
	Restaurant    *Restaurant     `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"restaurant,omitempty"`
	AddressID     uint            `gorm:"not null" json:"address_id"`
	Address       *Address        `gorm:"foreignKey:AddressID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"address,omitempty"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Tax           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	PreparedAt    *time.Time      `json:"prepared_at"`
	RoutedAt      *time.Time      `json:"routed_at"`
	DeliveredAt   *time.Time      `gorm:"index" json:"delivered_at"`
	CanceledAt    *time.Time      `json:"canceled_at"`
	Grade         *int            `json:"grade"`
	Comment       *string         `gorm:"type:text" json:"comment"`
	EvaluatedAt   *time.Time      `json:"evaluated_at"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Evaluated reports whether the client already rated the order.
func (o *Order) Evaluated() bool {
	return o.Grade != nil
}
