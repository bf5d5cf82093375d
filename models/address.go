package models

import (
	"time"

	"gorm.io/gorm"
)

// Address rows are soft deleted because delivered orders keep pointing at them.
type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ClientID   uint           `gorm:"not null;index" json:"client_id"`
	Street     string         `gorm:"type:varchar(255);not null" json:"street"`
	Number     string         `gorm:"type:varchar(20);not null" json:"number"`
	Complement string         `gorm:"type:varchar(255)" json:"complement"`
	District   string         `gorm:"type:varchar(100);not null" json:"district"`
	City       string         `gorm:"type:varchar(100);not null" json:"city"`
	State      string         `gorm:"type:varchar(2);not null" json:"state"`
	ZipCode    string         `gorm:"type:varchar(10);not null" json:"zip_code"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
