package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeremiapane/food-delivery/models"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID uint
	Role   string
}

// RestaurantForAdmin loads the restaurant owned by adminID.
func RestaurantForAdmin(ctx context.Context, db *gorm.DB, adminID uint) (*models.Restaurant, error) {
	var r models.Restaurant
	err := db.WithContext(ctx).Where("admin_id = ?", adminID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RestaurantRating is the average grade over evaluated orders.
type RestaurantRating struct {
	Average *float64 `json:"average"`
	Count   int64    `json:"count"`
}

func Rating(ctx context.Context, db *gorm.DB, restaurantID uint) (RestaurantRating, error) {
	var row struct {
		Average *float64
		Count   int64
	}
	err := db.WithContext(ctx).Model(&models.Order{}).
		Select("AVG(grade) AS average, COUNT(grade) AS count").
		Where("restaurant_id = ? AND grade IS NOT NULL", restaurantID).
		Scan(&row).Error
	if err != nil {
		return RestaurantRating{}, err
	}
	return RestaurantRating{Average: row.Average, Count: row.Count}, nil
}
