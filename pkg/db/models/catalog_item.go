package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubsupply/supplydesk-backend/pkg/enums"
)

// CatalogItem is one stocked supply in the club inventory. Name is globally
// unique and case-sensitive; the unique index backs the Conflict contract.
type CatalogItem struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Name        string                  `gorm:"column:name;uniqueIndex:uq_catalog_items_name;not null"`
	Quantity    int                     `gorm:"column:quantity;not null;default:0"`
	IsEnabled   bool                    `gorm:"column:is_enabled;not null;default:true"`
	OrderStatus enums.SupplyOrderStatus `gorm:"column:order_status;not null;default:'available'"`
	Remark      *string                 `gorm:"column:remark"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
