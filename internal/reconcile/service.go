package reconcile

import (
	"context"
	"fmt"

	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
	"github.com/google/uuid"
)

// catalogLister is the slice of the catalog store reconciliation needs.
type catalogLister interface {
	List(ctx context.Context, enabledOnly bool) ([]models.CatalogItem, error)
}

// lineItemLister is the slice of the cart store reconciliation needs.
type lineItemLister interface {
	ListLineItems(ctx context.Context) ([]models.LineItem, error)
}

// Service computes reconciliation reports on demand. Nothing is cached or
// persisted; every call reads the current catalog and line item state.
type Service interface {
	CatalogSummary(ctx context.Context) ([]CatalogSummaryRow, error)
	CustomItems(ctx context.Context) ([]models.LineItem, error)
}

type service struct {
	catalog   catalogLister
	lineItems lineItemLister
}

// NewService builds a reconciliation service over the two stores.
func NewService(catalog catalogLister, lineItems lineItemLister) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog lister required")
	}
	if lineItems == nil {
		return nil, fmt.Errorf("line item lister required")
	}
	return &service{catalog: catalog, lineItems: lineItems}, nil
}

// CatalogSummaryRow joins one catalog item against aggregate demand.
type CatalogSummaryRow struct {
	CatalogItemID  uuid.UUID               `json:"catalog_item_id"`
	Name           string                  `json:"name"`
	AvailableQty   int                     `json:"available_qty"`
	TotalRequested int                     `json:"total_requested"`
	TotalAllotted  int                     `json:"total_allotted"`
	OrderStatus    enums.SupplyOrderStatus `json:"order_status"`
	Remark         *string                 `json:"remark,omitempty"`
}

// CatalogSummary groups catalog-backed line items by catalog id and sums
// requested and allotted quantities per item. Items nothing references get
// zero totals; line items whose reference no longer resolves are ignored.
func (s *service) CatalogSummary(ctx context.Context) ([]CatalogSummaryRow, error) {
	items, err := s.catalog.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog items")
	}
	lineItems, err := s.lineItems.ListLineItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list line items")
	}

	type totals struct {
		requested int
		allotted  int
	}
	byCatalogID := make(map[uuid.UUID]totals, len(items))
	for _, li := range lineItems {
		if li.IsCustom() {
			continue
		}
		t := byCatalogID[*li.CatalogItemID]
		t.requested += li.RequestedQty
		t.allotted += li.AllottedQty
		byCatalogID[*li.CatalogItemID] = t
	}

	rows := make([]CatalogSummaryRow, 0, len(items))
	for _, item := range items {
		t := byCatalogID[item.ID]
		rows = append(rows, CatalogSummaryRow{
			CatalogItemID:  item.ID,
			Name:           item.Name,
			AvailableQty:   item.Quantity,
			TotalRequested: t.requested,
			TotalAllotted:  t.allotted,
			OrderStatus:    item.OrderStatus,
			Remark:         item.Remark,
		})
	}
	return rows, nil
}

// CustomItems returns every custom line item verbatim. Custom items are never
// merged across carts; each row keeps its own identity.
func (s *service) CustomItems(ctx context.Context) ([]models.LineItem, error) {
	lineItems, err := s.lineItems.ListLineItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list line items")
	}

	custom := make([]models.LineItem, 0)
	for _, li := range lineItems {
		if li.IsCustom() {
			custom = append(custom, li)
		}
	}
	return custom, nil
}
