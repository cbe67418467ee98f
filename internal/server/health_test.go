package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mysteryserved/tourquest/internal/database"
)

func TestHandleHealth(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handleHealth(logger, db)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decode[HealthResponse](t, rec)
	if body["sqlite"].Status != "ok" {
		t.Errorf("sqlite status = %q, want ok", body["sqlite"].Status)
	}

	// A closed database fails the ping.
	db.Close()
	rec = httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status after close = %d, want 503", rec.Code)
	}
	body = decode[HealthResponse](t, rec)
	if body["sqlite"].Status != "error" {
		t.Errorf("sqlite status = %q, want error", body["sqlite"].Status)
	}
}
