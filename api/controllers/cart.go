package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/clubsupply/supplydesk-backend/api/middleware"
	"github.com/clubsupply/supplydesk-backend/api/responses"
	"github.com/clubsupply/supplydesk-backend/api/validators"
	cartsvc "github.com/clubsupply/supplydesk-backend/internal/cart"
	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
	"github.com/clubsupply/supplydesk-backend/pkg/logger"
)

type addCatalogItemEntry struct {
	CatalogItemID string `json:"catalog_item_id" validate:"required,uuid"`
	Qty           int    `json:"qty" validate:"required,gt=0"`
}

type addCatalogItemsRequest struct {
	Items []addCatalogItemEntry `json:"items" validate:"required,min=1,dive"`
}

type addCustomItemRequest struct {
	Name string  `json:"name" validate:"required"`
	Qty  int     `json:"qty" validate:"required,gt=0"`
	Link *string `json:"link,omitempty"`
}

type lineItemView struct {
	ID            uuid.UUID  `json:"id"`
	CatalogItemID *uuid.UUID `json:"catalog_item_id,omitempty"`
	Name          string     `json:"name"`
	RequestedQty  int        `json:"requested_qty"`
	AllottedQty   int        `json:"allotted_qty"`
	Status        string     `json:"status"`
	Remark        *string    `json:"remark,omitempty"`
	Link          *string    `json:"link,omitempty"`
	IsCustom      bool       `json:"is_custom"`
}

type cartView struct {
	ID          uuid.UUID      `json:"id"`
	RequesterID uuid.UUID      `json:"requester_id"`
	Items       []lineItemView `json:"items"`
}

func toLineItemView(item *models.LineItem) lineItemView {
	return lineItemView{
		ID:            item.ID,
		CatalogItemID: item.CatalogItemID,
		Name:          item.Name,
		RequestedQty:  item.RequestedQty,
		AllottedQty:   item.AllottedQty,
		Status:        string(item.Status),
		Remark:        item.Remark,
		Link:          item.Link,
		IsCustom:      item.IsCustom(),
	}
}

func toCartView(cart *models.Cart) cartView {
	items := make([]lineItemView, 0, len(cart.Items))
	for i := range cart.Items {
		items = append(items, toLineItemView(&cart.Items[i]))
	}
	return cartView{
		ID:          cart.ID,
		RequesterID: cart.RequesterID,
		Items:       items,
	}
}

func requesterFromRequest(r *http.Request) (uuid.UUID, error) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return requester, nil
}

// CartAddItems merges a batch of catalog references into the requester's
// cart, creating the cart on first use.
func CartAddItems(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCatalogItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]cartsvc.AddCatalogItemInput, 0, len(payload.Items))
		for _, entry := range payload.Items {
			id, err := uuid.Parse(entry.CatalogItemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid catalog item id"))
				return
			}
			inputs = append(inputs, cartsvc.AddCatalogItemInput{CatalogItemID: id, Qty: entry.Qty})
		}

		cart, err := svc.AddCatalogItems(r.Context(), requester, inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCartView(cart))
	}
}

// CartAddCustomItem merges an ad-hoc item into the requester's cart.
func CartAddCustomItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCustomItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddCustomItem(r.Context(), requester, cartsvc.AddCustomItemInput{
			Name: payload.Name,
			Qty:  payload.Qty,
			Link: payload.Link,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCartView(cart))
	}
}

// CartFetch returns the requester's cart; an empty projection when none
// exists yet.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester, err := requesterFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetCartForRequester(r.Context(), requester)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCartView(cart))
	}
}
