package cart

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

// catalogResolver is the slice of the catalog store the cart service needs.
type catalogResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
}

// Service exposes cart self-service and line item fulfillment operations.
type Service interface {
	AddCatalogItems(ctx context.Context, requesterID uuid.UUID, items []AddCatalogItemInput) (*models.Cart, error)
	AddCustomItem(ctx context.Context, requesterID uuid.UUID, input AddCustomItemInput) (*models.Cart, error)
	GetCartForRequester(ctx context.Context, requesterID uuid.UUID) (*models.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
	ListCarts(ctx context.Context) ([]models.Cart, error)
	RemoveItem(ctx context.Context, cartID uuid.UUID, name string) error
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
	UpdateLineItem(ctx context.Context, id uuid.UUID, input UpdateLineItemInput) (*models.LineItem, error)
	UpdateLineItemsStrict(ctx context.Context, inputs []BatchUpdateInput) ([]models.LineItem, error)
	UpdateLineItemsCatalogFiltered(ctx context.Context, inputs []BatchUpdateInput) ([]models.LineItem, error)
}

type service struct {
	repo    *Repository
	catalog catalogResolver
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, catalog catalogResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

// AddCatalogItemInput is one entry of a catalog add batch.
type AddCatalogItemInput struct {
	CatalogItemID uuid.UUID
	Qty           int
}

// AddCustomItemInput captures an ad-hoc item not backed by the catalog.
type AddCustomItemInput struct {
	Name string
	Qty  int
	Link *string
}

// UpdateLineItemInput carries a fulfillment update. AllottedDelta accumulates
// onto the stored quantity; Status and Remark replace.
type UpdateLineItemInput struct {
	AllottedDelta *int
	Status        *enums.LineItemStatus
	Remark        *string
}

// BatchUpdateInput pairs a line item with its fulfillment update.
type BatchUpdateInput struct {
	ID uuid.UUID
	UpdateLineItemInput
}

// getOrCreateCart returns the requester's cart, creating it when absent. An
// insert losing the unique race on requester_id fetches the winner instead.
func (s *service) getOrCreateCart(ctx context.Context, requesterID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindCartByRequester(ctx, requesterID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart, err = s.repo.CreateCart(ctx, &models.Cart{RequesterID: requesterID})
	if err == nil {
		return cart, nil
	}
	if db.IsUniqueViolation(err, "uq_carts_requester") {
		return s.repo.FindCartByRequester(ctx, requesterID)
	}
	return nil, err
}

// AddCatalogItems resolves every catalog reference before touching the cart,
// then merges each entry by catalog identity.
func (s *service) AddCatalogItems(ctx context.Context, requesterID uuid.UUID, items []AddCatalogItemInput) (*models.Cart, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	resolved := make([]*models.CatalogItem, 0, len(items))
	for _, input := range items {
		if input.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		catalogItem, err := s.catalog.FindByID(ctx, input.CatalogItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("catalog item %s not found", input.CatalogItemID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve catalog item")
		}
		resolved = append(resolved, catalogItem)
	}

	cart, err := s.getOrCreateCart(ctx, requesterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get or create cart")
	}

	for i, input := range items {
		if err := s.mergeCatalogItem(ctx, cart.ID, resolved[i], input.Qty); err != nil {
			return nil, err
		}
	}

	cart, err = s.repo.FindCartByID(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	return cart, nil
}

// mergeCatalogItem accumulates onto an existing line item for the catalog
// reference or inserts a fresh one. The name is copied from the catalog item
// at add time and never re-synced.
func (s *service) mergeCatalogItem(ctx context.Context, cartID uuid.UUID, catalogItem *models.CatalogItem, qty int) error {
	existing, err := s.repo.FindLineItemByCatalogRef(ctx, cartID, catalogItem.ID)
	if err == nil {
		if err := s.repo.AddRequestedQty(ctx, existing.ID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "accumulate requested quantity")
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up line item")
	}

	catalogItemID := catalogItem.ID
	_, err = s.repo.CreateLineItem(ctx, &models.LineItem{
		CartID:        cartID,
		CatalogItemID: &catalogItemID,
		Name:          catalogItem.Name,
		RequestedQty:  qty,
		Status:        enums.LineItemStatusPending,
	})
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, "uq_line_items_cart_catalog") {
		winner, ferr := s.repo.FindLineItemByCatalogRef(ctx, cartID, catalogItem.ID)
		if ferr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, ferr, "fetch winning line item")
		}
		if ierr := s.repo.AddRequestedQty(ctx, winner.ID, qty); ierr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, ierr, "accumulate requested quantity")
		}
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert line item")
}

// AddCustomItem merges by display name among the cart's custom line items.
// The link is only overwritten when the incoming one is non-empty.
func (s *service) AddCustomItem(ctx context.Context, requesterID uuid.UUID, input AddCustomItemInput) (*models.Cart, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	cart, err := s.getOrCreateCart(ctx, requesterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get or create cart")
	}

	if err := s.mergeCustomItem(ctx, cart.ID, name, input.Qty, input.Link); err != nil {
		return nil, err
	}

	cart, err = s.repo.FindCartByID(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	return cart, nil
}

func (s *service) mergeCustomItem(ctx context.Context, cartID uuid.UUID, name string, qty int, link *string) error {
	existing, err := s.repo.FindCustomLineItem(ctx, cartID, name)
	if err == nil {
		return s.accumulateCustom(ctx, existing.ID, qty, link)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up custom line item")
	}

	_, err = s.repo.CreateLineItem(ctx, &models.LineItem{
		CartID:       cartID,
		Name:         name,
		RequestedQty: qty,
		Status:       enums.LineItemStatusPending,
		Link:         link,
	})
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, "uq_line_items_cart_custom_name") {
		winner, ferr := s.repo.FindCustomLineItem(ctx, cartID, name)
		if ferr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, ferr, "fetch winning custom line item")
		}
		return s.accumulateCustom(ctx, winner.ID, qty, link)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert custom line item")
}

func (s *service) accumulateCustom(ctx context.Context, id uuid.UUID, qty int, link *string) error {
	if err := s.repo.AddRequestedQty(ctx, id, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "accumulate requested quantity")
	}
	if link != nil && strings.TrimSpace(*link) != "" {
		if err := s.repo.UpdateLineItemFields(ctx, id, map[string]any{"link": *link}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update custom item link")
		}
	}
	return nil
}

// GetCartForRequester returns the requester's cart; an empty cart view when
// none exists yet.
func (s *service) GetCartForRequester(ctx context.Context, requesterID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindCartByRequester(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{RequesterID: requesterID, Items: []models.LineItem{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart, nil
}

func (s *service) GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindCartByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart, nil
}

func (s *service) ListCarts(ctx context.Context) ([]models.Cart, error) {
	carts, err := s.repo.ListCarts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list carts")
	}
	return carts, nil
}

// RemoveItem deletes the named line item and, when it was the cart's last
// item, the cart itself. The two deletes are sequenced, item first.
func (s *service) RemoveItem(ctx context.Context, cartID uuid.UUID, name string) error {
	if _, err := s.GetCart(ctx, cartID); err != nil {
		return err
	}

	item, err := s.repo.FindLineItemByName(ctx, cartID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up line item")
	}

	if err := s.repo.DeleteLineItem(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete line item")
	}

	remaining, err := s.repo.CountLineItems(ctx, cartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count remaining items")
	}
	if remaining == 0 {
		if err := s.repo.DeleteCart(ctx, cartID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete emptied cart")
		}
	}
	return nil
}

func (s *service) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	if _, err := s.GetCart(ctx, cartID); err != nil {
		return err
	}
	if err := s.repo.DeleteCart(ctx, cartID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart")
	}
	return nil
}

// UpdateLineItem applies a fulfillment update. The allotted delta accumulates
// through a storage-level increment; status and remark replace.
func (s *service) UpdateLineItem(ctx context.Context, id uuid.UUID, input UpdateLineItemInput) (*models.LineItem, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown line item status")
	}

	item, err := s.repo.FindLineItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load line item")
	}

	fields := map[string]any{}
	if input.AllottedDelta != nil {
		if item.AllottedQty+*input.AllottedDelta < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "allotted quantity cannot go negative")
		}
		fields["allotted_qty"] = gorm.Expr("allotted_qty + ?", *input.AllottedDelta)
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Remark != nil {
		fields["remark"] = *input.Remark
	}

	if err := s.repo.UpdateLineItemFields(ctx, id, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update line item")
	}
	updated, err := s.repo.FindLineItemByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload line item")
	}
	return updated, nil
}

// UpdateLineItemsStrict processes updates in order and aborts on the first
// failure, leaving the remaining entries untouched.
func (s *service) UpdateLineItemsStrict(ctx context.Context, inputs []BatchUpdateInput) ([]models.LineItem, error) {
	updated := make([]models.LineItem, 0, len(inputs))
	for _, input := range inputs {
		item, err := s.UpdateLineItem(ctx, input.ID, input.UpdateLineItemInput)
		if err != nil {
			return updated, err
		}
		updated = append(updated, *item)
	}
	return updated, nil
}

// UpdateLineItemsCatalogFiltered applies updates only to line items whose
// catalog reference still resolves; everything else is silently skipped.
func (s *service) UpdateLineItemsCatalogFiltered(ctx context.Context, inputs []BatchUpdateInput) ([]models.LineItem, error) {
	updated := make([]models.LineItem, 0, len(inputs))
	for _, input := range inputs {
		item, err := s.repo.FindLineItemByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return updated, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load line item")
		}
		if item.IsCustom() {
			continue
		}
		if _, err := s.catalog.FindByID(ctx, *item.CatalogItemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return updated, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve catalog reference")
		}

		applied, err := s.UpdateLineItem(ctx, input.ID, input.UpdateLineItemInput)
		if err != nil {
			return updated, err
		}
		updated = append(updated, *applied)
	}
	return updated, nil
}
