package model

import "time"

// Listing is a market item a neighbor has put up for sale.
// Stock is shared across all buyers and may only be changed through
// the catalog's atomic stock adjustment.
type Listing struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Category  string    `gorm:"size:32;not null" json:"category"`
	BasePrice int64     `gorm:"not null" json:"base_price"`
	IsFood    bool      `gorm:"default:false" json:"is_food"`
	IsCleaned bool      `gorm:"default:false" json:"is_cleaned"`
	ImageURL  string    `gorm:"size:256" json:"image_url"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time `gorm:"index:idx_listing_created;autoCreateTime" json:"created_at"`
}
