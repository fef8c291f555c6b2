package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/cuelight/engage-backend/internal/adapters/primary/http/middleware"
	apperrors "github.com/cuelight/engage-backend/internal/core/errors"
	"github.com/cuelight/engage-backend/internal/core/ports"
)

// RealtimeHandler is the REST surface external collaborators use to reach
// live connections: notification fan-out, cue pushes, clock overrides, and
// registry stats. Delivery is best effort; these endpoints report reach,
// not receipt.
type RealtimeHandler struct {
	publisher ports.RealtimePublisher
	eh        *ErrorHandler
	logger    *slog.Logger
}

// NewRealtimeHandler creates a new realtime facade handler
func NewRealtimeHandler(publisher ports.RealtimePublisher, eh *ErrorHandler, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		publisher: publisher,
		eh:        eh,
		logger:    logger,
	}
}

// RegisterRoutes mounts the facade under the given router.
func (h *RealtimeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/notify", h.HandleNotifyUser)
	r.Post("/notify/batch", h.HandleNotifyUsers)
	r.Post("/events/{eventID}/cue", h.HandlePushCue)
	r.Put("/events/{eventID}/timecode", h.HandleSetTimecode)
	r.Get("/stats", h.HandleStats)
}

type notifyUserRequest struct {
	UserID  string          `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

type notifyUsersRequest struct {
	UserIDs []string        `json:"userIds"`
	Payload json.RawMessage `json:"payload"`
}

type pushCueRequest struct {
	Cue json.RawMessage `json:"cue"`
}

type setTimecodeRequest struct {
	Timecode *int64 `json:"timecode"`
}

// HandleNotifyUser delivers a payload to every open connection of one user.
func (h *RealtimeHandler) HandleNotifyUser(w http.ResponseWriter, r *http.Request) {
	var req notifyUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.eh.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	errs := apperrors.NewValidationErrors()
	if req.UserID == "" {
		errs.Add("userId", "This field is required")
	}
	if len(req.Payload) == 0 {
		errs.Add("payload", "This field is required")
	}
	if errs.HasErrors() {
		h.eh.Handle(w, r, errs)
		return
	}

	delivered := h.publisher.SendNotificationToUser(req.UserID, req.Payload)

	h.logger.Info("notification dispatched",
		"request_id", GetRequestID(r.Context()),
		"actor_id", actorID(r),
		"target_user_id", req.UserID,
		"delivered", delivered,
	)

	WriteAccepted(w, map[string]any{"delivered": delivered})
}

// HandleNotifyUsers delivers a payload to a batch of users and reports how
// many were reached.
func (h *RealtimeHandler) HandleNotifyUsers(w http.ResponseWriter, r *http.Request) {
	var req notifyUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.eh.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	errs := apperrors.NewValidationErrors()
	if len(req.UserIDs) == 0 {
		errs.Add("userIds", "At least one user id is required")
	}
	if len(req.Payload) == 0 {
		errs.Add("payload", "This field is required")
	}
	if errs.HasErrors() {
		h.eh.Handle(w, r, errs)
		return
	}

	reached := h.publisher.SendNotificationToUsers(req.UserIDs, req.Payload)

	h.logger.Info("batch notification dispatched",
		"request_id", GetRequestID(r.Context()),
		"actor_id", actorID(r),
		"targets", len(req.UserIDs),
		"reached", reached,
	)

	WriteAccepted(w, map[string]any{"requested": len(req.UserIDs), "reached": reached})
}

// HandlePushCue broadcasts a cue to an event's room, e.g. from the live
// production console.
func (h *RealtimeHandler) HandlePushCue(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req pushCueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.eh.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}
	if len(req.Cue) == 0 || string(req.Cue) == "null" {
		h.eh.Handle(w, r, apperrors.ErrCueRequired)
		return
	}

	h.publisher.SendCueToEvent(eventID, req.Cue)

	h.logger.Info("cue pushed",
		"request_id", GetRequestID(r.Context()),
		"actor_id", actorID(r),
		"event_id", eventID,
	)

	WriteAccepted(w, map[string]any{"eventId": eventID})
}

// HandleSetTimecode overrides an event clock from outside the socket path,
// e.g. a REST-triggered admin resync.
func (h *RealtimeHandler) HandleSetTimecode(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req setTimecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.eh.Handle(w, r, apperrors.ErrTimecodeRequired)
		return
	}
	if req.Timecode == nil {
		h.eh.Handle(w, r, apperrors.ErrTimecodeRequired)
		return
	}
	if *req.Timecode < 0 {
		h.eh.Handle(w, r, apperrors.ErrTimecodeNegative)
		return
	}

	h.publisher.SetEventTimecode(eventID, *req.Timecode)

	h.logger.Info("event timecode overridden",
		"request_id", GetRequestID(r.Context()),
		"actor_id", actorID(r),
		"event_id", eventID,
		"timecode", *req.Timecode,
	)

	WriteSuccess(w, map[string]any{"eventId": eventID, "timecode": *req.Timecode})
}

// HandleStats returns aggregate connection counts for dashboards.
func (h *RealtimeHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.publisher.ConnectionStats())
}

func actorID(r *http.Request) string {
	if claims := mw.ClaimsFromContext(r.Context()); claims != nil {
		return claims.UserID
	}
	return ""
}
