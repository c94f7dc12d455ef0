package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"hangout-backend/internal/models"
)

// fakeProfileStore is an in-memory PresenceStore / PresenceReader /
// ProfileDirectory used by the service tests.
type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
}

func newFakeProfileStore(profiles ...*models.Profile) *fakeProfileStore {
	s := &fakeProfileStore{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *fakeProfileStore) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *fakeProfileStore) GetPresence(_ context.Context, userID string) (*models.UserPresence, error) {
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

func (s *fakeProfileStore) GetDisplayInfo(_ context.Context, userID string) (models.DisplayInfo, error) {
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

func (s *fakeProfileStore) UpdateLocation(_ context.Context, userID string, lat, lon float64, isAvailable *bool) error {
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

func (s *fakeProfileStore) ListNearbyCandidates(_ context.Context, excludeID string) ([]models.NearbyUser, error) {
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

// fakeRequestStore is an in-memory RequestStore mirroring the repository's
// invariants: one pending request per ordered pair, transitions resolved via
// models.ResolveResponse with the expired transition persisted.
type fakeRequestStore struct {
	mu       sync.Mutex
	requests map[string]*models.HangoutRequest
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[string]*models.HangoutRequest)}
}

func (s *fakeRequestStore) Create(_ context.Context, req *models.HangoutRequest) error {
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

func (s *fakeRequestStore) Respond(_ context.Context, requestID, responderID string, accept bool, now time.Time) (*models.HangoutRequest, error) {
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

func (s *fakeRequestStore) ListForUser(_ context.Context, userID string) (sent, received []*models.HangoutRequest, err error) {
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
	byCreatedDesc := func(reqs []*models.HangoutRequest) {
		sort.Slice(reqs, func(i, j int) bool {
			return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
		})
	}
	byCreatedDesc(sent)
	byCreatedDesc(received)
	return sent, received, nil
}

// get returns the stored request for assertions.
func (s *fakeRequestStore) get(id string) *models.HangoutRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil
	}
	copied := *req
	return &copied
}

// put seeds a request directly, bypassing Create.
func (s *fakeRequestStore) put(req *models.HangoutRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *req
	s.requests[req.ID] = &copied
}

func ptrFloat(v float64) *float64 { return &v }

func ptrBool(v bool) *bool { return &v }

func ptrString(v string) *string { return &v }
