package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"trashperson-route-service/internal/domain"
)

func TestWriteServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &domain.ValidationError{Reason: "too few", ExcludedCount: 2}, want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("get route 9: %w", domain.ErrNotFound), want: http.StatusNotFound},
		{name: "conflict", err: fmt.Errorf("set positions: %w", domain.ErrConflict), want: http.StatusConflict},
		{name: "lock wait timed out", err: fmt.Errorf("acquire lock: %w", context.DeadlineExceeded), want: http.StatusConflict},
		{name: "client went away", err: fmt.Errorf("acquire lock: %w", context.Canceled), want: statusClientClosedRequest},
		{name: "storage", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/routes/1/optimize", nil)

			writeServiceError(rec, req, "optimize route", tt.err)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
