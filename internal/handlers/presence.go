package handlers

import (
	"encoding/json"
	"net/http"

	"hangout-backend/internal/middleware"
	"hangout-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PresenceHandler handles presence-related HTTP requests
type PresenceHandler struct {
	presenceService *services.PresenceService
}

// NewPresenceHandler creates a new presence handler
func NewPresenceHandler(presenceService *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService}
}

// UpdateLocationBody represents the request body for a location update
type UpdateLocationBody struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	IsAvailable *bool    `json:"is_available,omitempty"`
}

// UpdateLocation handles PATCH /api/v1/users/me/location
func (h *PresenceHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var body UpdateLocationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Latitude == nil || body.Longitude == nil {
		respondError(w, "latitude and longitude are required", http.StatusBadRequest)
		return
	}

	err := h.presenceService.UpdateLocation(ctx, userID, *body.Latitude, *body.Longitude, body.IsAvailable)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update location")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetMe handles GET /api/v1/users/me
func (h *PresenceHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.presenceService.GetProfile(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
