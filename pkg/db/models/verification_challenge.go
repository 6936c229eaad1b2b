package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationChallenge is a short-lived one-time code mailed during
// registration and password reset.
type VerificationChallenge struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;not null;index"`
	Code      string    `gorm:"column:code;not null"`
	Purpose   string    `gorm:"column:purpose;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ExpiresAt returns the instant the challenge stops being redeemable.
func (v VerificationChallenge) ExpiresAt(ttl time.Duration) time.Time {
	return v.CreatedAt.Add(ttl)
}
