package server

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mysteryserved/tourquest/internal/store"
	"github.com/mysteryserved/tourquest/internal/tourquest"
)

// AdminStopRequest is the request body for POST /api/admin/tours/{id}/stops.
type AdminStopRequest struct {
	StopNumber       int                        `json:"stop_number"`
	Name             string                     `json:"name"`
	Address          string                     `json:"address"`
	StoryText        string                     `json:"story_text"`
	Instructions     string                     `json:"instructions"`
	MenuItems        []string                   `json:"menu_items"`
	Tips             []string                   `json:"tips"`
	VerificationType tourquest.VerificationType `json:"verification_type"`
	Password         string                     `json:"password"`
	Options          []string                   `json:"options"`
	CorrectAnswer    string                     `json:"correct_answer"`
	IsInfoOnly       bool                       `json:"is_info_only"`
	MediaType        tourquest.MediaType        `json:"media_type"`
	BackgroundImage  *string                    `json:"background_image"`
	FailuresAllowed  int                        `json:"failures_allowed"`
	AutoShowHint     *bool                      `json:"auto_show_hint"`
	EnableSkip       *bool                      `json:"enable_skip"`
	GPSLat           *float64                   `json:"gps_lat"`
	GPSLng           *float64                   `json:"gps_lng"`
	GPSRadius        int                        `json:"gps_radius"`
	ImageURL         *string                    `json:"image_url"`
	TransitionText   string                     `json:"transition_text"`
	NextStopPreview  string                     `json:"next_stop_preview"`
}

// validate enforces the authoring rules the store itself stays permissive
// about: a known verification type, and for multiple choice a correct
// answer drawn from the options.
func (req *AdminStopRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if !req.VerificationType.Valid() {
		return "unknown verification_type"
	}
	if req.IsInfoOnly {
		return ""
	}
	switch req.VerificationType {
	case tourquest.VerificationText:
		if strings.TrimSpace(req.Password) == "" {
			return "password is required for text verification"
		}
	case tourquest.VerificationMultipleChoice:
		if len(req.Options) < 2 {
			return "multiple choice needs at least two options"
		}
		if !slices.Contains(req.Options, req.CorrectAnswer) {
			return "correct_answer must be one of the options"
		}
	}
	return ""
}

// AdminStopPatch is the partial-update body for PATCH /api/admin/stops/{stopID}.
type AdminStopPatch struct {
	StopNumber       *int                        `json:"stop_number"`
	Name             *string                     `json:"name"`
	Address          *string                     `json:"address"`
	StoryText        *string                     `json:"story_text"`
	Instructions     *string                     `json:"instructions"`
	MenuItems        *[]string                   `json:"menu_items"`
	Tips             *[]string                   `json:"tips"`
	VerificationType *tourquest.VerificationType `json:"verification_type"`
	Password         *string                     `json:"password"`
	Options          *[]string                   `json:"options"`
	CorrectAnswer    *string                     `json:"correct_answer"`
	IsInfoOnly       *bool                       `json:"is_info_only"`
	MediaType        *tourquest.MediaType        `json:"media_type"`
	BackgroundImage  *string                     `json:"background_image"`
	FailuresAllowed  *int                        `json:"failures_allowed"`
	AutoShowHint     *bool                       `json:"auto_show_hint"`
	EnableSkip       *bool                       `json:"enable_skip"`
	GPSLat           *float64                    `json:"gps_lat"`
	GPSLng           *float64                    `json:"gps_lng"`
	GPSRadius        *int                        `json:"gps_radius"`
	ImageURL         *string                     `json:"image_url"`
	TransitionText   *string                     `json:"transition_text"`
	NextStopPreview  *string                     `json:"next_stop_preview"`
}

// ReorderRequest is the request body for POST /api/admin/tours/{id}/stops/reorder.
type ReorderRequest struct {
	StopIDs []string `json:"stop_ids"`
}

func handleAdminListStops(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tourID := chi.URLParam(r, "id")

		if _, err := tours.GetTour(r.Context(), tourID); errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}

		stops, err := tours.ListStops(r.Context(), tourID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if stops == nil {
			stops = []tourquest.Stop{}
		}
		writeJSON(w, http.StatusOK, stops)
	}
}

func handleAdminCreateStop(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tourID := chi.URLParam(r, "id")

		if _, err := tours.GetTour(r.Context(), tourID); errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}

		var req AdminStopRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		stop, err := tours.CreateStop(r.Context(), store.StopDraft{
			TourID:           tourID,
			StopNumber:       req.StopNumber,
			Name:             req.Name,
			Address:          req.Address,
			StoryText:        req.StoryText,
			Instructions:     req.Instructions,
			MenuItems:        req.MenuItems,
			Tips:             req.Tips,
			VerificationType: req.VerificationType,
			Password:         req.Password,
			Options:          req.Options,
			CorrectAnswer:    req.CorrectAnswer,
			IsInfoOnly:       req.IsInfoOnly,
			MediaType:        req.MediaType,
			BackgroundImage:  req.BackgroundImage,
			FailuresAllowed:  req.FailuresAllowed,
			AutoShowHint:     req.AutoShowHint,
			EnableSkip:       req.EnableSkip,
			GPSLat:           req.GPSLat,
			GPSLng:           req.GPSLng,
			GPSRadius:        req.GPSRadius,
			ImageURL:         req.ImageURL,
			TransitionText:   req.TransitionText,
			NextStopPreview:  req.NextStopPreview,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, stop)
	}
}

func handleAdminGetStop(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "stopID")

		stop, err := tours.GetStop(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "stop not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, stop)
	}
}

func handleAdminUpdateStop(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "stopID")

		var req AdminStopPatch
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.VerificationType != nil && !req.VerificationType.Valid() {
			writeError(w, http.StatusBadRequest, "unknown verification_type")
			return
		}

		stop, err := tours.UpdateStop(r.Context(), id, store.StopUpdate{
			StopNumber:       req.StopNumber,
			Name:             req.Name,
			Address:          req.Address,
			StoryText:        req.StoryText,
			Instructions:     req.Instructions,
			MenuItems:        req.MenuItems,
			Tips:             req.Tips,
			VerificationType: req.VerificationType,
			Password:         req.Password,
			Options:          req.Options,
			CorrectAnswer:    req.CorrectAnswer,
			IsInfoOnly:       req.IsInfoOnly,
			MediaType:        req.MediaType,
			BackgroundImage:  req.BackgroundImage,
			FailuresAllowed:  req.FailuresAllowed,
			AutoShowHint:     req.AutoShowHint,
			EnableSkip:       req.EnableSkip,
			GPSLat:           req.GPSLat,
			GPSLng:           req.GPSLng,
			GPSRadius:        req.GPSRadius,
			ImageURL:         req.ImageURL,
			TransitionText:   req.TransitionText,
			NextStopPreview:  req.NextStopPreview,
		})
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "stop not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, stop)
	}
}

func handleAdminDeleteStop(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "stopID")

		err := tours.DeleteStop(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "stop not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleAdminReorderStops(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tourID := chi.URLParam(r, "id")

		if _, err := tours.GetTour(r.Context(), tourID); errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}

		var req ReorderRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.StopIDs) == 0 {
			writeError(w, http.StatusBadRequest, "stop_ids is required")
			return
		}

		if err := tours.ReorderStops(r.Context(), tourID, req.StopIDs); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		stops, err := tours.ListStops(r.Context(), tourID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, stops)
	}
}
