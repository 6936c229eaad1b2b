package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clubsupply/supplydesk-backend/pkg/db"
	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// lineItemCascader is the slice of the cart store the catalog cascade needs.
type lineItemCascader interface {
	DeleteLineItemsByCatalogItem(ctx context.Context, tx *gorm.DB, catalogItemID uuid.UUID) error
	DeleteEmptyCarts(ctx context.Context, tx *gorm.DB) error
}

// Service exposes catalog maintenance operations (bosslevel only at the API).
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.CatalogItem, error)
	List(ctx context.Context, enabledOnly bool) ([]models.CatalogItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.CatalogItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Annotate(ctx context.Context, id uuid.UUID, input AnnotateInput) (*models.CatalogItem, error)
	AnnotateBatch(ctx context.Context, inputs []BatchAnnotateInput) ([]models.CatalogItem, error)
}

type service struct {
	repo  *Repository
	carts lineItemCascader
	tx    txRunner
}

// NewService builds a catalog service backed by the provided stack.
func NewService(repo *Repository, carts lineItemCascader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("line item cascader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, carts: carts, tx: tx}, nil
}

// CreateInput captures the payload for a new catalog item.
type CreateInput struct {
	Name        string
	Quantity    int
	OrderStatus enums.SupplyOrderStatus
	Remark      *string
}

// UpdateInput carries the optional fields of a catalog edit.
type UpdateInput struct {
	Name     *string
	Quantity *int
	Enabled  *bool
}

// AnnotateInput carries administrator bookkeeping fields, independent of
// quantity/enabled edits.
type AnnotateInput struct {
	OrderStatus *enums.SupplyOrderStatus
	Remark      *string
}

// BatchAnnotateInput pairs a catalog item with its annotation.
type BatchAnnotateInput struct {
	ID uuid.UUID
	AnnotateInput
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.CatalogItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	status := input.OrderStatus
	if status == "" {
		status = enums.SupplyOrderStatusAvailable
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown supply order status")
	}

	item := &models.CatalogItem{
		Name:        name,
		Quantity:    input.Quantity,
		IsEnabled:   true,
		OrderStatus: status,
		Remark:      input.Remark,
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_catalog_items_name") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an item with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create catalog item")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, enabledOnly bool) ([]models.CatalogItem, error) {
	rows, err := s.repo.List(ctx, enabledOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog items")
	}
	return rows, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load catalog item")
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.CatalogItem, error) {
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Enabled != nil {
		item.IsEnabled = *input.Enabled
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_catalog_items_name") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an item with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update catalog item")
	}
	return updated, nil
}

// Delete removes the item and every line item that references it. Children go
// first, then the item, then carts left empty by the cascade.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.carts.DeleteLineItemsByCatalogItem(ctx, tx, id); err != nil {
			return fmt.Errorf("cascade line items: %w", err)
		}
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("delete catalog item: %w", err)
		}
		if err := s.carts.DeleteEmptyCarts(ctx, tx); err != nil {
			return fmt.Errorf("prune empty carts: %w", err)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete catalog item")
	}
	return nil
}

func (s *service) Annotate(ctx context.Context, id uuid.UUID, input AnnotateInput) (*models.CatalogItem, error) {
	if input.OrderStatus != nil && !input.OrderStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown supply order status")
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.OrderStatus != nil {
		item.OrderStatus = *input.OrderStatus
	}
	if input.Remark != nil {
		item.Remark = input.Remark
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "annotate catalog item")
	}
	return updated, nil
}

// AnnotateBatch applies annotations in order; the first failure aborts the
// remaining unprocessed items.
func (s *service) AnnotateBatch(ctx context.Context, inputs []BatchAnnotateInput) ([]models.CatalogItem, error) {
	updated := make([]models.CatalogItem, 0, len(inputs))
	for _, input := range inputs {
		item, err := s.Annotate(ctx, input.ID, input.AnnotateInput)
		if err != nil {
			return updated, err
		}
		updated = append(updated, *item)
	}
	return updated, nil
}
