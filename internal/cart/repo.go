package cart

import (
	"context"

	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for carts and their line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
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

// CreateCart inserts a cart for the requester, assigning an ID when absent.
func (r *Repository) CreateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// FindCartByRequester loads the requester's cart with its line items.
func (r *Repository) FindCartByRequester(ctx context.Context, requesterID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("requester_id = ?", requesterID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindCartByID loads a cart with its line items.
func (r *Repository) FindCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListCarts returns every cart with line items, ordered by creation.
func (r *Repository) ListCarts(ctx context.Context) ([]models.Cart, error) {
	var rows []models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteCart removes the cart's line items and then the cart itself.
func (r *Repository) DeleteCart(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", id).Delete(&models.LineItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Cart{}).Error
}

// CreateLineItem inserts a line item, assigning an ID when absent.
func (r *Repository) CreateLineItem(ctx context.Context, item *models.LineItem) (*models.LineItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Status == "" {
		item.Status = enums.LineItemStatusPending
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindLineItemByID loads a single line item.
func (r *Repository) FindLineItemByID(ctx context.Context, id uuid.UUID) (*models.LineItem, error) {
	var item models.LineItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindLineItemByCatalogRef locates the cart's line item referencing the
// catalog item, if any.
func (r *Repository) FindLineItemByCatalogRef(ctx context.Context, cartID, catalogItemID uuid.UUID) (*models.LineItem, error) {
	var item models.LineItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND catalog_item_id = ?", cartID, catalogItemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindCustomLineItem locates the cart's custom line item by display name.
func (r *Repository) FindCustomLineItem(ctx context.Context, cartID uuid.UUID, name string) (*models.LineItem, error) {
	var item models.LineItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND catalog_item_id IS NULL AND name = ?", cartID, name).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindLineItemByName locates any line item in the cart by display name.
func (r *Repository) FindLineItemByName(ctx context.Context, cartID uuid.UUID, name string) (*models.LineItem, error) {
	var item models.LineItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND name = ?", cartID, name).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddRequestedQty accumulates onto requested_qty with a storage-level
// increment so racing adds never overwrite each other.
func (r *Repository) AddRequestedQty(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.LineItem{}).
		Where("id = ?", id).
		Update("requested_qty", gorm.Expr("requested_qty + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateLineItemFields applies the provided column updates; allotted deltas
// must be passed as gorm expressions by the caller.
func (r *Repository) UpdateLineItemFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.LineItem{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLineItem removes a single line item.
func (r *Repository) DeleteLineItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LineItem{}).Error
}

// CountLineItems returns the number of line items left in the cart.
func (r *Repository) CountLineItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LineItem{}).
		Where("cart_id = ?", cartID).
		Count(&count).Error
	return count, err
}

// ListLineItems returns every line item across all carts.
func (r *Repository) ListLineItems(ctx context.Context) ([]models.LineItem, error) {
	var rows []models.LineItem
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteLineItemsByCatalogItem removes every line item referencing the
// catalog item, across all carts.
func (r *Repository) DeleteLineItemsByCatalogItem(ctx context.Context, tx *gorm.DB, catalogItemID uuid.UUID) error {
	return r.WithTx(tx).db.WithContext(ctx).
		Where("catalog_item_id = ?", catalogItemID).
		Delete(&models.LineItem{}).Error
}

// DeleteEmptyCarts prunes carts that no longer hold any line item.
func (r *Repository) DeleteEmptyCarts(ctx context.Context, tx *gorm.DB) error {
	return r.WithTx(tx).db.WithContext(ctx).
		Where("id NOT IN (?)",
			r.WithTx(tx).db.Model(&models.LineItem{}).Select("cart_id")).
		Delete(&models.Cart{}).Error
}
