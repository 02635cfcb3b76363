package handlers

import (
	"net/http"
	"trashperson-route-service/internal/api/dto"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/services"
)

// Optimize reorders a route's stops by nearest neighbor and reports the distance change.
// Distances are rounded to one decimal only here, at the response boundary.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := services.OptimizeRoute(r.Context(), id, h.Repo, h.Locker)
	if err != nil {
		writeServiceError(w, r, "optimize route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeRouteResponse{
		RouteID:            result.RouteID,
		Stops:              dto.NewStopResponses(result.Stops),
		DistanceBefore:     services.RoundDistance(result.DistanceBefore),
		DistanceAfter:      services.RoundDistance(result.DistanceAfter),
		DistanceSaved:      services.RoundDistance(result.DistanceSaved),
		DistanceUnit:       domain.DistanceUnit,
		StopsExcludedCount: result.StopsExcludedCount,
	})
}
