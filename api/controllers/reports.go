package controllers

import (
	"net/http"

	"github.com/clubsupply/supplydesk-backend/api/responses"
	reconcilesvc "github.com/clubsupply/supplydesk-backend/internal/reconcile"
	"github.com/clubsupply/supplydesk-backend/pkg/logger"
)

// ReportCatalog returns the catalog joined against aggregate demand.
func ReportCatalog(svc reconcilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.CatalogSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ReportCustom returns every custom line item, ungrouped.
func ReportCustom(svc reconcilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.CustomItems(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]lineItemView, 0, len(items))
		for i := range items {
			views = append(views, toLineItemView(&items[i]))
		}
		responses.WriteSuccess(w, views)
	}
}
