package server

import (
	"errors"
	"net/http"

	"github.com/mysteryserved/tourquest/internal/store"
)

// SyncPayload carries the opaque snapshot blob in both directions.
type SyncPayload struct {
	Data string `json:"data"`
}

func handleAdminExport(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blob, err := tours.ExportSnapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, SyncPayload{Data: blob})
	}
}

func handleAdminImport(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SyncPayload
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Data == "" {
			writeError(w, http.StatusBadRequest, "data is required")
			return
		}

		err := tours.ImportSnapshot(r.Context(), req.Data)
		if errors.Is(err, store.ErrInvalidSnapshot) {
			writeError(w, http.StatusBadRequest, "snapshot is malformed")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
	}
}

func handleAdminFactoryReset(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tours.ResetToFactory(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}
