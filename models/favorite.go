package models

import "time"

type Favorite struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	ClientID     uint        `gorm:"not null;uniqueIndex:idx_favorites_client_restaurant" json:"client_id"`
	RestaurantID uint        `gorm:"not null;uniqueIndex:idx_favorites_client_restaurant" json:"restaurant_id"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"restaurant,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
