package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a single requester's open supply requests. The unique index on
// requester_id guarantees at most one cart per requester; a racing insert
// loses with a unique violation and falls back to fetching the winner.
type Cart struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	RequesterID uuid.UUID  `gorm:"column:requester_id;type:uuid;uniqueIndex:uq_carts_requester;not null"`
	Items       []LineItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
