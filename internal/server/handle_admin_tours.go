package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mysteryserved/tourquest/internal/store"
	"github.com/mysteryserved/tourquest/internal/tourquest"
)

// AdminTourSummary is one row in the dashboard tour list.
type AdminTourSummary struct {
	tourquest.Tour
	StopCount int `json:"stop_count"`
}

// AdminTourRequest is the request body for POST /api/admin/tours.
type AdminTourRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	City        string  `json:"city"`
	Theme       string  `json:"theme"`
	CoverImage  *string `json:"cover_image"`
	IsActive    bool    `json:"is_active"`
}

func (req *AdminTourRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.City = strings.TrimSpace(req.City)
	if req.Name == "" {
		return "name is required"
	}
	if req.City == "" {
		return "city is required"
	}
	return ""
}

// AdminTourPatch is the partial-update body for PATCH
// /api/admin/tours/{id}. Absent fields are left unchanged.
type AdminTourPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	City        *string `json:"city"`
	Theme       *string `json:"theme"`
	CoverImage  *string `json:"cover_image"`
	IsActive    *bool   `json:"is_active"`
}

func handleAdminListTours(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := tours.ListTours(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		summaries := make([]AdminTourSummary, 0, len(all))
		for _, t := range all {
			stops, err := tours.ListStops(r.Context(), t.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			summaries = append(summaries, AdminTourSummary{Tour: t, StopCount: len(stops)})
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func handleAdminCreateTour(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminTourRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		tour, err := tours.CreateTour(r.Context(), store.TourDraft{
			Name:        req.Name,
			Description: req.Description,
			City:        req.City,
			Theme:       req.Theme,
			CoverImage:  req.CoverImage,
			IsActive:    req.IsActive,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, tour)
	}
}

func handleAdminGetTour(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		tour, err := tours.GetTour(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, tour)
	}
}

func handleAdminUpdateTour(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req AdminTourPatch
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tour, err := tours.UpdateTour(r.Context(), id, store.TourUpdate{
			Name:        req.Name,
			Description: req.Description,
			City:        req.City,
			Theme:       req.Theme,
			CoverImage:  req.CoverImage,
			IsActive:    req.IsActive,
		})
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, tour)
	}
}

func handleAdminDeleteTour(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := tours.DeleteTour(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleAdminDuplicateTour(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		tour, err := tours.DuplicateTour(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, tour)
	}
}
