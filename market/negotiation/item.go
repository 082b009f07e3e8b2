package negotiation

import (
	"time"

	"github.com/maeulmarket/server/model"
)

// Item is an immutable snapshot of what is being haggled over. A buy
// session snapshots a listing; a sell session snapshots an owned item.
// Snapshotting at start keeps the session stable even if the catalog
// row changes underneath it.
type Item struct {
	ListingID    int64      // source listing (buy mode)
	OwnedID      string     // owned instance (sell mode)
	OriginalID   *int64     // owned item's source listing, nil if untraceable
	Name         string
	Category     string
	BasePrice    int64
	IsFood       bool
	IsCleaned    bool
	ImageURL     string
	PurchaseTime *time.Time
}

// ItemFromListing snapshots a catalog listing for a buy negotiation.
func ItemFromListing(l *model.Listing) Item {
	return Item{
		ListingID: l.ID,
		Name:      l.Name,
		Category:  l.Category,
		BasePrice: l.BasePrice,
		IsFood:    l.IsFood,
		IsCleaned: l.IsCleaned,
		ImageURL:  l.ImageURL,
	}
}

// ItemFromOwned snapshots an inventory item for a sell negotiation.
func ItemFromOwned(o *model.OwnedItem) Item {
	return Item{
		OwnedID:      o.ID,
		OriginalID:   o.OriginalID,
		Name:         o.Name,
		Category:     o.Category,
		BasePrice:    o.BasePrice,
		IsFood:       o.IsFood,
		IsCleaned:    o.IsCleaned,
		ImageURL:     o.ImageURL,
		PurchaseTime: o.PurchaseTime,
	}
}
