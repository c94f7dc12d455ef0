package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"hangout-backend/internal/middleware"
	"hangout-backend/internal/models"
	"hangout-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// memProfiles is an in-memory profile store backing the handler tests.
type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
}

func newMemProfiles(profiles ...*models.Profile) *memProfiles {
	s := &memProfiles{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *memProfiles) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memProfiles) GetPresence(_ context.Context, userID string) (*models.UserPresence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &models.UserPresence{
		UserID:      p.ID,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		IsAvailable: p.IsAvailable,
		IsPublic:    p.IsPublic,
		LastSeenAt:  p.LastSeenAt,
	}, nil
}

func (s *memProfiles) GetDisplayInfo(_ context.Context, userID string) (models.DisplayInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.DisplayInfo{}, models.ErrUserNotFound
	}
	return models.DisplayInfo{
		ID:        p.ID,
		UserName:  p.UserName,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		AvatarURL: p.AvatarURL,
	}, nil
}

func (s *memProfiles) UpdateLocation(_ context.Context, userID string, lat, lon float64, isAvailable *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	p.Latitude = &lat
	p.Longitude = &lon
	now := time.Now()
	p.LastSeenAt = &now
	if isAvailable != nil {
		p.IsAvailable = *isAvailable
	}
	return nil
}

func (s *memProfiles) ListNearbyCandidates(_ context.Context, excludeID string) ([]models.NearbyUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var candidates []models.NearbyUser
	for _, p := range s.profiles {
		if p.ID == excludeID || !p.IsAvailable || !p.IsPublic || p.Latitude == nil || p.Longitude == nil {
			continue
		}
		candidates = append(candidates, models.NearbyUser{
			ID:        p.ID,
			UserName:  p.UserName,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			AvatarURL: p.AvatarURL,
			Bio:       p.Bio,
			Latitude:  *p.Latitude,
			Longitude: *p.Longitude,
		})
	}
	return candidates, nil
}

// memRequests is an in-memory request store with the same invariants as the
// pgx repository.
type memRequests struct {
	mu       sync.Mutex
	requests map[string]*models.HangoutRequest
}

func newMemRequests() *memRequests {
	return &memRequests{requests: make(map[string]*models.HangoutRequest)}
}

func (s *memRequests) Create(_ context.Context, req *models.HangoutRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.FromProfileID == req.FromProfileID &&
			existing.ToProfileID == req.ToProfileID &&
			existing.Status == models.StatusPending {
			return models.ErrDuplicatePending
		}
	}
	copied := *req
	s.requests[req.ID] = &copied
	return nil
}

func (s *memRequests) Respond(_ context.Context, requestID, responderID string, accept bool, now time.Time) (*models.HangoutRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, models.ErrRequestNotFound
	}
	next, err := models.ResolveResponse(req, responderID, accept, now)
	if err != nil {
		if errors.Is(err, models.ErrRequestExpired) {
			req.Status = next
			req.UpdatedAt = now
		}
		return nil, err
	}
	req.Status = next
	req.UpdatedAt = now
	copied := *req
	return &copied, nil
}

func (s *memRequests) ListForUser(_ context.Context, userID string) (sent, received []*models.HangoutRequest, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, req := range s.requests {
		if req.Status == models.StatusPending && now.After(req.ExpiresAt) {
			req.Status = models.StatusExpired
			req.UpdatedAt = now
		}
		copied := *req
		switch userID {
		case req.FromProfileID:
			sent = append(sent, &copied)
		case req.ToProfileID:
			received = append(received, &copied)
		}
	}
	sort.Slice(sent, func(i, j int) bool { return sent[i].CreatedAt.After(sent[j].CreatedAt) })
	sort.Slice(received, func(i, j int) bool { return received[i].CreatedAt.After(received[j].CreatedAt) })
	return sent, received, nil
}

// testApp bundles the wired router and its collaborators for a test.
type testApp struct {
	router   chi.Router
	auth     *services.AuthService
	hub      *services.Hub
	profiles *memProfiles
	requests *memRequests
}

// newTestApp wires handlers, services and middleware exactly as cmd.Run does,
// over in-memory stores.
func newTestApp(profiles ...*models.Profile) *testApp {
	profileStore := newMemProfiles(profiles...)
	requestStore := newMemRequests()
	auth := services.NewAuthService("test-secret")
	hub := services.NewHub()
	presenceService := services.NewPresenceService(profileStore, hub, 5)
	hangoutService := services.NewHangoutService(requestStore, profileStore, profileStore, hub, 24*time.Hour)

	hangoutHandler := NewHangoutHandler(hangoutService, presenceService)
	presenceHandler := NewPresenceHandler(presenceService)
	wsHandler := NewWebSocketHandler(hub, auth)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(auth))
			r.Route("/hangouts", func(r chi.Router) {
				r.Post("/send", hangoutHandler.SendRequest)
				r.Get("/requests", hangoutHandler.ListRequests)
				r.Post("/respond/{request_id}", hangoutHandler.Respond)
				r.Get("/nearby", hangoutHandler.Nearby)
			})
			r.Get("/users/me", presenceHandler.GetMe)
			r.Patch("/users/me/location", presenceHandler.UpdateLocation)
		})
	})
	r.Get("/ws", wsHandler.HandleWebSocket)

	return &testApp{
		router:   r,
		auth:     auth,
		hub:      hub,
		profiles: profileStore,
		requests: requestStore,
	}
}

func (a *testApp) token(userID string) string {
	token, err := a.auth.GenerateToken(userID)
	if err != nil {
		panic(err)
	}
	return token
}

func (a *testApp) authorize(req *http.Request, userID string) {
	req.Header.Set("Authorization", "Bearer "+a.token(userID))
}

func testProfile(id, userName string, lat, lon float64) *models.Profile {
	return &models.Profile{
		ID:          id,
		UserName:    userName,
		FirstName:   "Test",
		LastName:    "User",
		Latitude:    &lat,
		Longitude:   &lon,
		IsAvailable: true,
		IsPublic:    true,
	}
}
