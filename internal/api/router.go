package api

import (
	"net/http"
	"trashperson-route-service/internal/api/handlers"
	"trashperson-route-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// geocoder may be nil; the geocode endpoint then reports 501.
func NewRouter(repo ports.RouteRepository, locker ports.RouteLocker, geocoder ports.Geocoder) http.Handler {
	mux := http.NewServeMux()

	routes := &handlers.RouteHandler{
		Repo:     repo,
		Locker:   locker,
		Geocoder: geocoder,
	}

	mux.HandleFunc("GET /health", routes.Health)

	mux.HandleFunc("GET /routes", routes.List)
	mux.HandleFunc("POST /routes", routes.Create)
	mux.HandleFunc("GET /routes/{id}", routes.Get)
	mux.HandleFunc("DELETE /routes/{id}", routes.Delete)
	mux.HandleFunc("PATCH /routes/{id}/status", routes.UpdateStatus)

	mux.HandleFunc("POST /routes/{id}/stops", routes.AddStops)
	mux.HandleFunc("PUT /routes/{id}/stops/reorder", routes.Reorder)
	mux.HandleFunc("PATCH /routes/{routeId}/stops/{stopId}", routes.UpdateStop)

	mux.HandleFunc("POST /routes/{id}/optimize", routes.Optimize)
	mux.HandleFunc("POST /routes/{id}/geocode", routes.Geocode)

	// Request ids are assigned outermost so the access log can include them.
	return requestIDMiddleware(loggingMiddleware(mux))
}
