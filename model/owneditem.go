package model

import "time"

// OwnedItem is a listing snapshot copied into an account's inventory at
// purchase time. It carries its own instance ID; OriginalID points back
// to the source listing for stock reconciliation on resale.
type OwnedItem struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"` // uuid, minted at purchase
	AccountID    int64      `gorm:"index:idx_owned_account;not null" json:"account_id"`
	OriginalID   *int64     `gorm:"index:idx_owned_original" json:"original_id"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	Category     string     `gorm:"size:32;not null" json:"category"`
	BasePrice    int64      `gorm:"not null" json:"base_price"`
	IsFood       bool       `gorm:"default:false" json:"is_food"`
	IsCleaned    bool       `gorm:"default:false" json:"is_cleaned"`
	ImageURL     string     `gorm:"size:256" json:"image_url"`
	PurchaseTime *time.Time `json:"purchase_time"` // set only for food, drives spoilage
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
