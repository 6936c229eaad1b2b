package catalog

import (
	"context"

	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for the inventory catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new catalog item, assigning an ID when absent.
func (r *Repository) Create(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID loads a single catalog item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns catalog items ordered by name, optionally only enabled ones.
func (r *Repository) List(ctx context.Context, enabledOnly bool) ([]models.CatalogItem, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	var rows []models.CatalogItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided catalog item.
func (r *Repository) Update(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a catalog item by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CatalogItem{}).Error
}
