package handlers

import (
	"net/http"
	"trashperson-route-service/internal/api/dto"
	"trashperson-route-service/internal/services"
)

// Geocode fills in coordinates for a route's stops that have none.
func (h *RouteHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	if h.Geocoder == nil {
		writeError(w, r, http.StatusNotImplemented, "geocoding is not configured")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	summary, err := services.GeocodeRouteStops(r.Context(), id, h.Repo, h.Geocoder)
	if err != nil {
		writeServiceError(w, r, "geocode route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GeocodeRouteResponse{
		RouteID:           id,
		ResolvedStopIDs:   summary.Resolved,
		UnresolvedStopIDs: summary.Unresolved,
	})
}
