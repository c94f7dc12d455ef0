package services

import (
	"context"
	"fmt"

	"hangout-backend/internal/geo"
	"hangout-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// PresenceStore is the storage behind the presence tracker.
type PresenceStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetPresence(ctx context.Context, userID string) (*models.UserPresence, error)
	UpdateLocation(ctx context.Context, userID string, lat, lon float64, isAvailable *bool) error
	ListNearbyCandidates(ctx context.Context, excludeID string) ([]models.NearbyUser, error)
}

// Publisher pushes an event to a user's live sessions and returns the
// delivery count. Zero means the user was offline; the event is lost.
type Publisher interface {
	Publish(targetUserID string, event Event) int
}

// PresenceService tracks user locations and answers nearby queries
type PresenceService struct {
	store           PresenceStore
	hub             Publisher
	defaultRadiusKm float64
}

// NewPresenceService creates a new presence service
func NewPresenceService(store PresenceStore, hub Publisher, defaultRadiusKm float64) *PresenceService {
	return &PresenceService{
		store:           store,
		hub:             hub,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// UpdateLocation overwrites a user's coordinates. Availability changes only
// when isAvailable is supplied; omitting it preserves the prior value. After
// a successful write the user's refreshed nearby set is pushed to their own
// sessions, best-effort.
func (s *PresenceService) UpdateLocation(ctx context.Context, userID string, lat, lon float64, isAvailable *bool) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v", models.ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v", models.ErrInvalidCoordinate, lon)
	}

	if err := s.store.UpdateLocation(ctx, userID, lat, lon, isAvailable); err != nil {
		return err
	}

	s.pushNearbyUpdate(ctx, userID)
	return nil
}

// GetPresence retrieves a user's presence
func (s *PresenceService) GetPresence(ctx context.Context, userID string) (*models.UserPresence, error) {
	return s.store.GetPresence(ctx, userID)
}

// GetProfile retrieves a user's full profile
func (s *PresenceService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// FindNearby returns the public, available users within radiusKm of the
// caller's last reported position, closest first. A non-positive radius
// falls back to the configured default. A caller without a reported
// location gets models.ErrNoLocation.
func (s *PresenceService) FindNearby(ctx context.Context, userID string, radiusKm float64) ([]models.NearbyUser, error) {
	if radiusKm <= 0 {
		radiusKm = s.defaultRadiusKm
	}

	origin, err := s.store.GetPresence(ctx, userID)
	if err != nil {
		return nil, err
	}
	if origin.Latitude == nil || origin.Longitude == nil {
		return nil, models.ErrNoLocation
	}

	candidates, err := s.store.ListNearbyCandidates(ctx, userID)
	if err != nil {
		return nil, err
	}

	points := make([]geo.Candidate, len(candidates))
	byID := make(map[string]models.NearbyUser, len(candidates))
	for i, c := range candidates {
		points[i] = geo.Candidate{ID: c.ID, Point: geo.Point{Lat: c.Latitude, Lon: c.Longitude}}
		byID[c.ID] = c
	}

	results := geo.Nearby(geo.Point{Lat: *origin.Latitude, Lon: *origin.Longitude}, radiusKm, points)

	nearby := make([]models.NearbyUser, 0, len(results))
	for _, res := range results {
		user := byID[res.ID]
		user.DistanceKm = res.DistanceKm
		nearby = append(nearby, user)
	}
	return nearby, nil
}

// pushNearbyUpdate recomputes the mover's nearby set and pushes it to their
// own sessions. Failures are logged and swallowed: the location write has
// already succeeded and the client can re-query at any time.
func (s *PresenceService) pushNearbyUpdate(ctx context.Context, userID string) {
	nearby, err := s.FindNearby(ctx, userID, s.defaultRadiusKm)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to compute nearby set for push")
		return
	}

	event := NewEvent(EventLocationUpdate)
	event.NearbyUsers = nearby
	if delivered := s.hub.Publish(userID, event); delivered == 0 {
		log.Debug().Str("user_id", userID).Msg("No live sessions for location update")
	}
}
