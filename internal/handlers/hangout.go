package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"hangout-backend/internal/middleware"
	"hangout-backend/internal/models"
	"hangout-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HangoutHandler handles hangout-related HTTP requests
type HangoutHandler struct {
	hangoutService  *services.HangoutService
	presenceService *services.PresenceService
}

// NewHangoutHandler creates a new hangout handler
func NewHangoutHandler(hangoutService *services.HangoutService, presenceService *services.PresenceService) *HangoutHandler {
	return &HangoutHandler{
		hangoutService:  hangoutService,
		presenceService: presenceService,
	}
}

// SendRequestBody represents the request body for sending a hangout request
type SendRequestBody struct {
	ToProfileID string  `json:"to_profile_id"`
	Message     *string `json:"message,omitempty"`
}

// RespondBody represents the request body for responding to a hangout request
type RespondBody struct {
	Accept *bool `json:"accept"`
}

// RespondResponse is the body returned by a successful respond call.
type RespondResponse struct {
	Message string                 `json:"message"`
	Request *models.HangoutRequest `json:"request"`
}

// SendRequest handles POST /api/v1/hangouts/send
func (h *HangoutHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var body SendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.ToProfileID == "" {
		respondError(w, "to_profile_id is required", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(body.ToProfileID); err != nil {
		respondError(w, "to_profile_id must be a valid UUID", http.StatusBadRequest)
		return
	}

	req, err := h.hangoutService.SendRequest(ctx, userID, body.ToProfileID, body.Message)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("to_profile_id", body.ToProfileID).
			Msg("Failed to send hangout request")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusCreated, req)
}

// ListRequests handles GET /api/v1/hangouts/requests
func (h *HangoutHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	list, err := h.hangoutService.ListRequests(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list hangout requests")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// Respond handles POST /api/v1/hangouts/respond/{request_id}
func (h *HangoutHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "request_id")

	if requestID == "" {
		respondError(w, "request_id is required", http.StatusBadRequest)
		return
	}

	var body RespondBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Accept == nil {
		respondError(w, "accept is required", http.StatusBadRequest)
		return
	}

	req, err := h.hangoutService.RespondToRequest(ctx, requestID, userID, *body.Accept)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("request_id", requestID).
			Msg("Failed to respond to hangout request")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	message := "Hangout request declined"
	if req.Status == models.StatusAccepted {
		message = "Hangout request accepted!"
	}
	respondJSON(w, http.StatusOK, RespondResponse{Message: message, Request: req})
}

// Nearby handles GET /api/v1/hangouts/nearby
func (h *HangoutHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	// An absent or unparsable radius falls back to the configured default.
	var radiusKm float64
	if raw := r.URL.Query().Get("radiusKm"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			radiusKm = parsed
		}
	}

	nearby, err := h.presenceService.FindNearby(ctx, userID, radiusKm)
	if err != nil {
		// A caller who never reported a location gets an empty list, not an
		// error: there is simply nothing to search from yet.
		if errors.Is(err, models.ErrNoLocation) {
			respondJSON(w, http.StatusOK, []models.NearbyUser{})
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to find nearby users")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, nearby)
}
