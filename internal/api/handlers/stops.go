package handlers

import (
	"net/http"
	"trashperson-route-service/internal/api/dto"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/services"
)

func (h *RouteHandler) AddStops(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.AddStopsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	added, err := services.AddStops(r.Context(), id, req.AppointmentIDs, h.Repo, h.Locker)
	if err != nil {
		writeServiceError(w, r, "add stops", err)
		return
	}

	res := make([]dto.AddedStopResponse, 0, len(added))
	for _, s := range added {
		res = append(res, dto.AddedStopResponse{ID: s.ID, AppointmentID: s.AppointmentID, StopOrder: s.Position})
	}
	writeJSON(w, r, http.StatusCreated, res)
}

// Reorder applies a manual stop order covering every stop of the route.
func (h *RouteHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ReorderStopsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order := make([]domain.StopPosition, 0, len(req.StopOrder))
	for _, item := range req.StopOrder {
		order = append(order, domain.StopPosition{StopID: item.StopID, Position: item.Order})
	}

	if err := services.ReorderStops(r.Context(), id, order, h.Repo, h.Locker); err != nil {
		writeServiceError(w, r, "reorder stops", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.MessageResponse{Message: "Stops reordered"})
}

func (h *RouteHandler) UpdateStop(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathID(w, r, "routeId")
	if !ok {
		return
	}
	stopID, ok := pathID(w, r, "stopId")
	if !ok {
		return
	}

	var req dto.UpdateStopRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	update := domain.StopUpdate{Status: req.Status, Notes: req.Notes.Value, NotesSet: req.Notes.Set}
	if update.Empty() {
		writeError(w, r, http.StatusBadRequest, "no updates provided")
		return
	}

	if err := h.Repo.UpdateStop(r.Context(), routeID, stopID, update); err != nil {
		writeServiceError(w, r, "update stop", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.UpdateStopResponse{ID: stopID, Status: req.Status, Notes: req.Notes.Value})
}
