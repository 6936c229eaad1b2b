package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clubsupply/supplydesk-backend/api/responses"
	"github.com/clubsupply/supplydesk-backend/api/validators"
	catalogsvc "github.com/clubsupply/supplydesk-backend/internal/catalog"
	"github.com/clubsupply/supplydesk-backend/pkg/db/models"
	"github.com/clubsupply/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
	"github.com/clubsupply/supplydesk-backend/pkg/logger"
)

type createCatalogItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	OrderStatus *string `json:"order_status,omitempty"`
	Remark      *string `json:"remark,omitempty"`
}

type updateCatalogItemRequest struct {
	Name     *string `json:"name,omitempty"`
	Quantity *int    `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Enabled  *bool   `json:"enabled,omitempty"`
}

type annotateCatalogItemRequest struct {
	ID          string  `json:"id" validate:"required,uuid"`
	OrderStatus *string `json:"order_status,omitempty"`
	Remark      *string `json:"remark,omitempty"`
}

type batchAnnotateRequest struct {
	Items []annotateCatalogItemRequest `json:"items" validate:"required,min=1,dive"`
}

type catalogItemView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Enabled     bool      `json:"enabled"`
	OrderStatus string    `json:"order_status"`
	Remark      *string   `json:"remark,omitempty"`
}

func toCatalogItemView(item *models.CatalogItem) catalogItemView {
	return catalogItemView{
		ID:          item.ID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Enabled:     item.IsEnabled,
		OrderStatus: string(item.OrderStatus),
		Remark:      item.Remark,
	}
}

func toCatalogItemViews(items []models.CatalogItem) []catalogItemView {
	views := make([]catalogItemView, 0, len(items))
	for i := range items {
		views = append(views, toCatalogItemView(&items[i]))
	}
	return views
}

func parseOrderStatus(raw *string) (*enums.SupplyOrderStatus, error) {
	if raw == nil {
		return nil, nil
	}
	status, err := enums.ParseSupplyOrderStatus(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}
	return &status, nil
}

func CatalogCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCatalogItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := parseOrderStatus(payload.OrderStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.CreateInput{
			Name:     payload.Name,
			Quantity: payload.Quantity,
			Remark:   payload.Remark,
		}
		if status != nil {
			input.OrderStatus = *status
		}

		item, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toCatalogItemView(item))
	}
}

// CatalogList lists all items; ?enabled=true narrows to enabled ones.
func CatalogList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enabledOnly := strings.EqualFold(r.URL.Query().Get("enabled"), "true")

		items, err := svc.List(r.Context(), enabledOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCatalogItemViews(items))
	}
}

func CatalogUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidURLParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCatalogItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), id, catalogsvc.UpdateInput{
			Name:     payload.Name,
			Quantity: payload.Quantity,
			Enabled:  payload.Enabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCatalogItemView(item))
	}
}

// CatalogDelete removes an item and every line item referencing it.
func CatalogDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidURLParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CatalogAnnotateBatch applies order-status/remark annotations in order,
// stopping at the first failure.
func CatalogAnnotateBatch(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload batchAnnotateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]catalogsvc.BatchAnnotateInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			id, err := uuid.Parse(item.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
				return
			}
			status, err := parseOrderStatus(item.OrderStatus)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			inputs = append(inputs, catalogsvc.BatchAnnotateInput{
				ID: id,
				AnnotateInput: catalogsvc.AnnotateInput{
					OrderStatus: status,
					Remark:      item.Remark,
				},
			})
		}

		updated, err := svc.AnnotateBatch(r.Context(), inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCatalogItemViews(updated))
	}
}

func uuidURLParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
