package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubsupply/supplydesk-backend/pkg/enums"
)

// LineItem is one requested item inside a cart. CatalogItemID nil means a
// custom (ad-hoc) item identified by its display name within the cart. The
// name is copied from the catalog at add time and never re-synced.
type LineItem struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CartID        uuid.UUID            `gorm:"column:cart_id;type:uuid;not null;index"`
	CatalogItemID *uuid.UUID           `gorm:"column:catalog_item_id;type:uuid;index"`
	Name          string               `gorm:"column:name;not null"`
	RequestedQty  int                  `gorm:"column:requested_qty;not null"`
	AllottedQty   int                  `gorm:"column:allotted_qty;not null;default:0"`
	Status        enums.LineItemStatus `gorm:"column:status;not null;default:'pending'"`
	Remark        *string              `gorm:"column:remark"`
	Link          *string              `gorm:"column:link"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// IsCustom reports whether the line item has no catalog backing.
func (l LineItem) IsCustom() bool {
	return l.CatalogItemID == nil
}
