package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mysteryserved/tourquest/internal/play"
	"github.com/mysteryserved/tourquest/internal/store"
	"github.com/mysteryserved/tourquest/internal/tourquest"
)

// PlayTourSummary is one entry in the public tour listing.
type PlayTourSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	City        string  `json:"city"`
	Theme       string  `json:"theme"`
	CoverImage  *string `json:"coverImage"`
	StopCount   int     `json:"stopCount"`
}

// PlayStopView is the player's view of a stop. Verification secrets
// (password, correct answer) are stripped; the choices themselves stay.
type PlayStopView struct {
	StopNumber       int                        `json:"stopNumber"`
	Name             string                     `json:"name"`
	Address          string                     `json:"address"`
	StoryText        string                     `json:"storyText"`
	Instructions     string                     `json:"instructions"`
	MenuItems        []string                   `json:"menuItems"`
	Tips             []string                   `json:"tips"`
	VerificationType tourquest.VerificationType `json:"verificationType"`
	Options          []string                   `json:"options,omitempty"`
	IsInfoOnly       bool                       `json:"isInfoOnly"`
	MediaType        tourquest.MediaType        `json:"mediaType,omitempty"`
	BackgroundImage  *string                    `json:"backgroundImage"`
	ImageURL         *string                    `json:"imageUrl"`
	GPSLat           *float64                   `json:"gpsLat"`
	GPSLng           *float64                   `json:"gpsLng"`
	GPSRadius        int                        `json:"gpsRadius"`
	TransitionText   string                     `json:"transitionText"`
	NextStopPreview  string                     `json:"nextStopPreview"`
}

// PlayNextStop previews the upcoming stop on the transition screen.
type PlayNextStop struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// PlayStateResponse is the full session view returned by every play
// endpoint that changes or reads state.
type PlayStateResponse struct {
	Token          string        `json:"token,omitempty"`
	TourName       string        `json:"tourName"`
	State          play.State    `json:"state"`
	StopNumber     int           `json:"stopNumber"`
	TotalStops     int           `json:"totalStops"`
	FailedAttempts int           `json:"failedAttempts"`
	SkipAvailable  bool          `json:"skipAvailable"`
	CurrentStop    *PlayStopView `json:"currentStop"`
	NextStop       *PlayNextStop `json:"nextStop,omitempty"`
}

// AnswerRequest is the request body for POST /api/play/session/answer.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// AnswerResponse reports the outcome of a submission or skip.
type AnswerResponse struct {
	Correct        bool       `json:"correct"`
	State          play.State `json:"state"`
	StopNumber     int        `json:"stopNumber"`
	TourCompleted  bool       `json:"tourCompleted"`
	FailedAttempts int        `json:"failedAttempts"`
	SkipAvailable  bool       `json:"skipAvailable"`
	HintSuggested  bool       `json:"hintSuggested"`
}

func handlePlayListTours(tours *store.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := tours.ListTours(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		active := []PlayTourSummary{}
		for _, t := range all {
			if !t.IsActive {
				continue
			}
			stops, err := tours.ListStops(r.Context(), t.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			active = append(active, PlayTourSummary{
				ID:          t.ID,
				Name:        t.Name,
				Description: t.Description,
				City:        t.City,
				Theme:       t.Theme,
				CoverImage:  t.CoverImage,
				StopCount:   len(stops),
			})
		}
		writeJSON(w, http.StatusOK, active)
	}
}

func handlePlayCreateSession(tours *store.TourStore, sessions *SessionRegistry, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tourID := chi.URLParam(r, "tourID")

		tour, err := tours.GetTour(r.Context(), tourID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !tour.IsActive) {
			writeError(w, http.StatusNotFound, "tour not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		stops, err := tours.ListStops(r.Context(), tourID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		sess, err := sessions.Create(tour, stops, broker)
		if errors.Is(err, play.ErrNoStops) {
			writeError(w, http.StatusConflict, "tour has no stops")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := sessionState(sess)
		resp.Token = sess.Token
		writeJSON(w, http.StatusCreated, resp)
	}
}

func handlePlayState(sessions *SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		sess.mu.Lock()
		resp := sessionState(sess)
		sess.mu.Unlock()
		writeJSON(w, http.StatusOK, resp)
	}
}

func handlePlayStart(sessions *SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()

		if err := sess.Runner.Start(); err != nil {
			writeError(w, http.StatusConflict, "run already started")
			return
		}
		writeJSON(w, http.StatusOK, sessionState(sess))
	}
}

func handlePlayAnswer(sessions *SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()

		result, err := sess.Runner.Submit(req.Answer)
		if err != nil {
			writeError(w, http.StatusConflict, "no stop awaiting an answer")
			return
		}
		writeJSON(w, http.StatusOK, answerResponse(sess, result))
	}
}

func handlePlaySkip(sessions *SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()

		result, err := sess.Runner.Skip()
		if errors.Is(err, play.ErrSkipLocked) {
			writeError(w, http.StatusConflict, "skip not available yet")
			return
		}
		if err != nil {
			writeError(w, http.StatusConflict, "no stop awaiting an answer")
			return
		}
		writeJSON(w, http.StatusOK, answerResponse(sess, result))
	}
}

func handlePlayAdvance(sessions *SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()

		if err := sess.Runner.Advance(); err != nil {
			writeError(w, http.StatusConflict, "no transition to advance from")
			return
		}
		writeJSON(w, http.StatusOK, sessionState(sess))
	}
}

func handlePlayRestart(sessions *SessionRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, sessions)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()

		sess.Runner.Restart()
		writeJSON(w, http.StatusOK, sessionState(sess))
	}
}

func sessionState(sess *playSession) PlayStateResponse {
	r := sess.Runner
	resp := PlayStateResponse{
		TourName:       sess.Tour.Name,
		State:          r.State(),
		StopNumber:     r.StopIndex() + 1,
		TotalStops:     r.TotalStops(),
		FailedAttempts: r.FailedAttempts(),
		SkipAvailable:  r.SkipAvailable(),
	}

	if stop, ok := r.CurrentStop(); ok {
		view := playStopView(stop)
		resp.CurrentStop = &view
	}
	if r.State() == play.StateTransition && r.StopIndex()+1 < r.TotalStops() {
		if next, ok := r.PeekNextStop(); ok {
			resp.NextStop = &PlayNextStop{Name: next.Name, Address: next.Address}
		}
	}
	return resp
}

func answerResponse(sess *playSession, result play.Result) AnswerResponse {
	return AnswerResponse{
		Correct:        result.Correct,
		State:          result.State,
		StopNumber:     result.StopNumber,
		TourCompleted:  result.TourCompleted,
		FailedAttempts: sess.Runner.FailedAttempts(),
		SkipAvailable:  result.SkipAvailable,
		HintSuggested:  result.HintSuggested,
	}
}

func playStopView(stop tourquest.Stop) PlayStopView {
	return PlayStopView{
		StopNumber:       stop.StopNumber,
		Name:             stop.Name,
		Address:          stop.Address,
		StoryText:        stop.StoryText,
		Instructions:     stop.Instructions,
		MenuItems:        stop.MenuItems,
		Tips:             stop.Tips,
		VerificationType: stop.VerificationType,
		Options:          stop.Options,
		IsInfoOnly:       stop.IsInfoOnly,
		MediaType:        stop.MediaType,
		BackgroundImage:  stop.BackgroundImage,
		ImageURL:         stop.ImageURL,
		GPSLat:           stop.GPSLat,
		GPSLng:           stop.GPSLng,
		GPSRadius:        stop.GPSRadius,
		TransitionText:   stop.TransitionText,
		NextStopPreview:  stop.NextStopPreview,
	}
}
