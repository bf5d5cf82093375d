package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// money is rendered as a JSON number, not a quoted string
	decimal.MarshalJSONWithoutQuotes = true
}

type Restaurant struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AdminID      uint            `gorm:"not null;uniqueIndex" json:"admin_id"`
	Admin        *User           `gorm:"foreignKey:AdminID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CategoryID   uint            `gorm:"not null;index" json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	DeliveryTime int             `gorm:"not null" json:"delivery_time"` // minutes
	Tax          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Image        *string         `gorm:"type:varchar(255)" json:"image"`
	Hours        []Hour          `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"hours,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Hour is one weekday of a restaurant's schedule. OpenedAt and ClosedAt are
// minutes since midnight in the marketplace time zone.
type Hour struct {
	ID           uint `gorm:"primaryKey" json:"-"`
	RestaurantID uint `gorm:"not null;uniqueIndex:idx_hours_restaurant_weekday" json:"-"`
	Weekday      int  `gorm:"not null;uniqueIndex:idx_hours_restaurant_weekday" json:"weekday"`
	Open         bool `gorm:"not null" json:"open"`
	OpenedAt     int  `gorm:"not null" json:"opened_at"`
	ClosedAt     int  `gorm:"not null" json:"closed_at"`
}
