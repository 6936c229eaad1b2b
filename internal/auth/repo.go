package auth

import (
	"context"
	"strings"

	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists verification challenges.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a challenge repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateChallenge inserts a challenge, assigning an ID when absent.
func (r *Repository) CreateChallenge(ctx context.Context, challenge *models.VerificationChallenge) (*models.VerificationChallenge, error) {
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	challenge.Email = strings.ToLower(strings.TrimSpace(challenge.Email))
	if err := r.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return nil, err
	}
	return challenge, nil
}

// FindLatestChallenge returns the most recent challenge for the email and
// purpose.
func (r *Repository) FindLatestChallenge(ctx context.Context, email, purpose string) (*models.VerificationChallenge, error) {
	var challenge models.VerificationChallenge
	err := r.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", strings.ToLower(strings.TrimSpace(email)), purpose).
		Order("created_at DESC").
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ConsumeChallenges removes every challenge issued to the email for the
// purpose. Called after a successful redemption.
func (r *Repository) ConsumeChallenges(ctx context.Context, email, purpose string) error {
	return r.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", strings.ToLower(strings.TrimSpace(email)), purpose).
		Delete(&models.VerificationChallenge{}).Error
}
