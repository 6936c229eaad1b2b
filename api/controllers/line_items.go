package controllers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clubsupply/supplydesk-backend/api/responses"
	"github.com/clubsupply/supplydesk-backend/api/validators"
	cartsvc "github.com/clubsupply/supplydesk-backend/internal/cart"
	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
	"github.com/clubsupply/supplydesk-backend/pkg/logger"
)

type updateLineItemRequest struct {
	AllottedDelta *int    `json:"allotted_delta,omitempty"`
	Status        *string `json:"status,omitempty"`
	Remark        *string `json:"remark,omitempty"`
}

type batchUpdateLineItemEntry struct {
	ID string `json:"id" validate:"required,uuid"`
	updateLineItemRequest
}

type batchUpdateLineItemsRequest struct {
	Items []batchUpdateLineItemEntry `json:"items" validate:"required,min=1,dive"`
}

func (req updateLineItemRequest) toInput() (cartsvc.UpdateLineItemInput, error) {
	input := cartsvc.UpdateLineItemInput{
		AllottedDelta: req.AllottedDelta,
		Remark:        req.Remark,
	}
	if req.Status != nil {
		status, err := enums.ParseLineItemStatus(strings.TrimSpace(*req.Status))
		if err != nil {
			return cartsvc.UpdateLineItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

func (req batchUpdateLineItemsRequest) toInputs() ([]cartsvc.BatchUpdateInput, error) {
	inputs := make([]cartsvc.BatchUpdateInput, 0, len(req.Items))
	for _, entry := range req.Items {
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line item id")
		}
		input, err := entry.toInput()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, cartsvc.BatchUpdateInput{ID: id, UpdateLineItemInput: input})
	}
	return inputs, nil
}

// adminLineItemView is the full projection, timestamps included. The
// requester-facing lineItemView stays minimal.
type adminLineItemView struct {
	lineItemView
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type adminCartView struct {
	ID          uuid.UUID           `json:"id"`
	RequesterID uuid.UUID           `json:"requester_id"`
	Items       []adminLineItemView `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toAdminCartView(cart *models.Cart) adminCartView {
	items := make([]adminLineItemView, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		items = append(items, adminLineItemView{
			lineItemView: toLineItemView(item),
			CreatedAt:    item.CreatedAt,
			UpdatedAt:    item.UpdatedAt,
		})
	}
	return adminCartView{
		ID:          cart.ID,
		RequesterID: cart.RequesterID,
		Items:       items,
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
}

// AdminListCarts returns the full requester roster with carts and items.
func AdminListCarts(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carts, err := svc.ListCarts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]adminCartView, 0, len(carts))
		for i := range carts {
			views = append(views, toAdminCartView(&carts[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

func AdminGetCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := uuidURLParam(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetCart(r.Context(), cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toAdminCartView(cart))
	}
}

func AdminDeleteCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := uuidURLParam(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCart(r.Context(), cartID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminRemoveCartItem deletes a line item by display name; the cart goes too
// when its last item is removed.
func AdminRemoveCartItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := uuidURLParam(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := chi.URLParam(r, "name")
		if decoded, derr := url.PathUnescape(name); derr == nil {
			name = decoded
		}
		if strings.TrimSpace(name) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item name is required"))
			return
		}

		if err := svc.RemoveItem(r.Context(), cartID, name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// LineItemUpdate applies a single fulfillment update.
func LineItemUpdate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidURLParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateLineItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateLineItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toLineItemView(item))
	}
}

// LineItemBatchUpdate processes updates in order and stops at the first
// failure.
func LineItemBatchUpdate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload batchUpdateLineItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs, err := payload.toInputs()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateLineItemsStrict(r.Context(), inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]lineItemView, 0, len(updated))
		for i := range updated {
			views = append(views, toLineItemView(&updated[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// LineItemBatchUpdateFiltered applies updates only where the catalog
// reference still resolves; everything else is skipped.
func LineItemBatchUpdateFiltered(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload batchUpdateLineItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs, err := payload.toInputs()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateLineItemsCatalogFiltered(r.Context(), inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]lineItemView, 0, len(updated))
		for i := range updated {
			views = append(views, toLineItemView(&updated[i]))
		}
		responses.WriteSuccess(w, views)
	}
}
