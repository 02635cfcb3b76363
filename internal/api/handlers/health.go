package handlers

import (
	"context"
	"log"
	"net/http"
	"time"
)

// pinger is implemented by stores that can report connectivity.
type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness, and storage reachability when the store supports it.
func (h *RouteHandler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Repo.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			log.Printf("health: store ping failed: %v", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
