package handlers

import (
	"net/http"
	"strconv"
	"trashperson-route-service/internal/api/dto"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/ports"
	"trashperson-route-service/internal/services"
)

// RouteHandler exposes route planning endpoints.
type RouteHandler struct {
	Repo     ports.RouteRepository
	Locker   ports.RouteLocker
	Geocoder ports.Geocoder
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.RouteFilter{
		Date:   q.Get("date"),
		Status: q.Get("status"),
	}
	if v := q.Get("assigned_to"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid assigned_to")
			return
		}
		filter.AssignedTo = &id
	}
	if filter.Status != "" && !domain.ValidRouteStatus(filter.Status) {
		writeError(w, r, http.StatusBadRequest, "invalid status")
		return
	}

	routes, err := h.Repo.ListRoutes(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, "list routes", err)
		return
	}

	res := make([]dto.RouteSummaryResponse, 0, len(routes))
	for _, rt := range routes {
		res = append(res, dto.RouteSummaryResponse{
			ID:             rt.ID,
			Name:           rt.Name,
			Date:           rt.Date,
			AssignedTo:     rt.AssignedTo,
			Status:         rt.Status,
			CreatedAt:      rt.CreatedAt,
			StopCount:      rt.StopCount,
			CompletedCount: rt.CompletedCount,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns a route with its stops and a freshly derived total distance.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := services.GetRouteDetail(r.Context(), id, h.Repo)
	if err != nil {
		writeServiceError(w, r, "get route", err)
		return
	}

	rt := detail.Route
	writeJSON(w, r, http.StatusOK, dto.RouteDetailResponse{
		ID:            rt.ID,
		Name:          rt.Name,
		Date:          rt.Date,
		AssignedTo:    rt.AssignedTo,
		Status:        rt.Status,
		CreatedAt:     rt.CreatedAt,
		Stops:         dto.NewStopResponses(rt.Stops),
		TotalDistance: services.RoundDistance(detail.TotalDistance),
		DistanceUnit:  domain.DistanceUnit,
	})
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.Repo.CreateRoute(r.Context(), &domain.Route{
		Name:       req.Name,
		Date:       req.Date,
		AssignedTo: req.AssignedTo,
		Status:     domain.RoutePlanned,
	}, req.AppointmentIDs)
	if err != nil {
		writeServiceError(w, r, "create route", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.RouteSummaryResponse{
		ID:         created.ID,
		Name:       created.Name,
		Date:       created.Date,
		AssignedTo: created.AssignedTo,
		Status:     created.Status,
		CreatedAt:  created.CreatedAt,
		StopCount:  created.StopCount,
	})
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	unlock, err := h.Locker.Lock(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "delete route", err)
		return
	}
	defer unlock()

	if err := h.Repo.DeleteRoute(r.Context(), id); err != nil {
		writeServiceError(w, r, "delete route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.MessageResponse{Message: "Route deleted"})
}

func (h *RouteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateRouteStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Repo.UpdateRouteStatus(r.Context(), id, req.Status); err != nil {
		writeServiceError(w, r, "update route status", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.UpdateRouteStatusResponse{ID: id, Status: req.Status})
}
