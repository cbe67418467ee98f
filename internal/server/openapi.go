package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/mysteryserved/tourquest/internal/tourquest"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "TourQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the TourQuest scavenger-hunt builder and player.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/play/tours
	getPlayTours, _ := r.NewOperationContext(http.MethodGet, "/api/play/tours")
	getPlayTours.SetSummary("List playable tours")
	getPlayTours.SetDescription("Returns all active tours with their stop counts.")
	getPlayTours.AddRespStructure([]PlayTourSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getPlayTours)

	// POST /api/play/tours/{tourID}/session
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/play/tours/{tourID}/session")
	postSession.SetSummary("Open a play session")
	postSession.SetDescription("Creates an ephemeral run for one tour and returns the session token.")
	postSession.AddRespStructure(PlayStateResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSession)

	// GET /api/play/session
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/play/session")
	getSession.SetSummary("Session state")
	getSession.SetDescription("Returns the full play state for the session. Requires Bearer token.")
	getSession.AddRespStructure(PlayStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getSession)

	// POST /api/play/session/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/play/session/start")
	postStart.SetSummary("Start the run")
	postStart.SetDescription("Leaves the intro screen for the first stop.")
	postStart.AddRespStructure(PlayStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// POST /api/play/session/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/play/session/answer")
	postAnswer.SetSummary("Submit an answer")
	postAnswer.SetDescription("Adjudicates an answer for the current stop. A wrong answer is a normal response, not an error.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/play/session/skip
	postSkip, _ := r.NewOperationContext(http.MethodPost, "/api/play/session/skip")
	postSkip.SetSummary("Skip the current stop")
	postSkip.SetDescription("Forces a success once the failure threshold has unlocked skipping.")
	postSkip.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSkip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSkip)

	// POST /api/play/session/advance
	postAdvance, _ := r.NewOperationContext(http.MethodPost, "/api/play/session/advance")
	postAdvance.SetSummary("Head to the next stop")
	postAdvance.SetDescription("Leaves the transition screen for the next stop.")
	postAdvance.AddRespStructure(PlayStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAdvance.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAdvance)

	// POST /api/play/session/restart
	postRestart, _ := r.NewOperationContext(http.MethodPost, "/api/play/session/restart")
	postRestart.SetSummary("Restart the run")
	postRestart.SetDescription("Resets to a fresh session at the intro screen.")
	postRestart.AddRespStructure(PlayStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postRestart)

	// GET /api/play/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/play/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of play notifications. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/play
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws/play")
	getWS.SetSummary("Websocket event stream")
	getWS.SetDescription("Upgrades to a websocket mirroring the SSE play-event stream.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the authenticated admin.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/tours
	getTours, _ := r.NewOperationContext(http.MethodGet, "/api/admin/tours")
	getTours.SetSummary("List tours")
	getTours.SetDescription("Returns all tours, newest first, with stop counts.")
	getTours.AddRespStructure([]AdminTourSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getTours)

	// POST /api/admin/tours
	postTour, _ := r.NewOperationContext(http.MethodPost, "/api/admin/tours")
	postTour.SetSummary("Create tour")
	postTour.AddReqStructure(AdminTourRequest{})
	postTour.AddRespStructure(tourquest.Tour{}, openapi.WithHTTPStatus(http.StatusCreated))
	postTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postTour)

	// GET /api/admin/tours/{id}
	getTour, _ := r.NewOperationContext(http.MethodGet, "/api/admin/tours/{id}")
	getTour.SetSummary("Get tour")
	getTour.AddRespStructure(tourquest.Tour{}, openapi.WithHTTPStatus(http.StatusOK))
	getTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTour)

	// PATCH /api/admin/tours/{id}
	patchTour, _ := r.NewOperationContext(http.MethodPatch, "/api/admin/tours/{id}")
	patchTour.SetSummary("Update tour")
	patchTour.SetDescription("Partial update: absent fields are left unchanged.")
	patchTour.AddReqStructure(AdminTourPatch{})
	patchTour.AddRespStructure(tourquest.Tour{}, openapi.WithHTTPStatus(http.StatusOK))
	patchTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(patchTour)

	// DELETE /api/admin/tours/{id}
	delTour, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/tours/{id}")
	delTour.SetSummary("Delete tour")
	delTour.SetDescription("Deletes the tour and every stop that references it.")
	delTour.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	delTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(delTour)

	// POST /api/admin/tours/{id}/duplicate
	dupTour, _ := r.NewOperationContext(http.MethodPost, "/api/admin/tours/{id}/duplicate")
	dupTour.SetSummary("Duplicate tour")
	dupTour.SetDescription("Deep-clones the tour and its stops. The copy is created inactive.")
	dupTour.AddRespStructure(tourquest.Tour{}, openapi.WithHTTPStatus(http.StatusCreated))
	dupTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(dupTour)

	// GET /api/admin/tours/{id}/stops
	getStops, _ := r.NewOperationContext(http.MethodGet, "/api/admin/tours/{id}/stops")
	getStops.SetSummary("List stops")
	getStops.SetDescription("Returns the tour's stops ordered by stop number.")
	getStops.AddRespStructure([]tourquest.Stop{}, openapi.WithHTTPStatus(http.StatusOK))
	getStops.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getStops)

	// POST /api/admin/tours/{id}/stops
	postStop, _ := r.NewOperationContext(http.MethodPost, "/api/admin/tours/{id}/stops")
	postStop.SetSummary("Create stop")
	postStop.AddReqStructure(AdminStopRequest{})
	postStop.AddRespStructure(tourquest.Stop{}, openapi.WithHTTPStatus(http.StatusCreated))
	postStop.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postStop)

	// POST /api/admin/tours/{id}/stops/reorder
	postReorder, _ := r.NewOperationContext(http.MethodPost, "/api/admin/tours/{id}/stops/reorder")
	postReorder.SetSummary("Reorder stops")
	postReorder.SetDescription("Reassigns stop numbers 1..N following the given id order.")
	postReorder.AddReqStructure(ReorderRequest{})
	postReorder.AddRespStructure([]tourquest.Stop{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postReorder)

	// GET /api/admin/stops/{stopID}
	getStop, _ := r.NewOperationContext(http.MethodGet, "/api/admin/stops/{stopID}")
	getStop.SetSummary("Get stop")
	getStop.AddRespStructure(tourquest.Stop{}, openapi.WithHTTPStatus(http.StatusOK))
	getStop.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getStop)

	// PATCH /api/admin/stops/{stopID}
	patchStop, _ := r.NewOperationContext(http.MethodPatch, "/api/admin/stops/{stopID}")
	patchStop.SetSummary("Update stop")
	patchStop.SetDescription("Partial update: absent fields are left unchanged.")
	patchStop.AddReqStructure(AdminStopPatch{})
	patchStop.AddRespStructure(tourquest.Stop{}, openapi.WithHTTPStatus(http.StatusOK))
	patchStop.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(patchStop)

	// DELETE /api/admin/stops/{stopID}
	delStop, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/stops/{stopID}")
	delStop.SetSummary("Delete stop")
	delStop.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	delStop.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(delStop)

	// GET /api/admin/sync/export
	getExport, _ := r.NewOperationContext(http.MethodGet, "/api/admin/sync/export")
	getExport.SetSummary("Export snapshot")
	getExport.SetDescription("Returns the whole tour/stop collection as one transportable blob.")
	getExport.AddRespStructure(SyncPayload{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getExport)

	// POST /api/admin/sync/import
	postImport, _ := r.NewOperationContext(http.MethodPost, "/api/admin/sync/import")
	postImport.SetSummary("Import snapshot")
	postImport.SetDescription("Replaces the whole collection with a previously exported blob. Malformed blobs leave the store untouched.")
	postImport.AddReqStructure(SyncPayload{})
	postImport.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postImport.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postImport)

	// POST /api/admin/sync/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/admin/sync/reset")
	postReset.SetSummary("Factory reset")
	postReset.SetDescription("Discards everything and reinstalls the demo dataset.")
	postReset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postReset)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(spec)
	}
}
