package services

import (
	"context"
	"fmt"
	"time"

	"hangout-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestStore is the persistence behind the hangout request lifecycle. It
// guards the at-most-one-pending invariant on Create and applies respond
// transitions atomically with the expiry check.
type RequestStore interface {
	Create(ctx context.Context, req *models.HangoutRequest) error
	Respond(ctx context.Context, requestID, responderID string, accept bool, now time.Time) (*models.HangoutRequest, error)
	ListForUser(ctx context.Context, userID string) (sent, received []*models.HangoutRequest, err error)
}

// PresenceReader is the slice of the presence tracker the orchestrator needs
// to validate a request target.
type PresenceReader interface {
	GetPresence(ctx context.Context, userID string) (*models.UserPresence, error)
}

// ProfileDirectory enriches notification payloads and request listings with
// display info, without this service owning profile storage.
type ProfileDirectory interface {
	GetDisplayInfo(ctx context.Context, userID string) (models.DisplayInfo, error)
}

// HangoutService owns the hangout request lifecycle: validation, persistence
// and best-effort realtime notification. Persistence success is the success
// criterion of every operation; notification is supplementary.
type HangoutService struct {
	requests RequestStore
	presence PresenceReader
	profiles ProfileDirectory
	hub      Publisher
	ttl      time.Duration
}

// NewHangoutService creates a new hangout service
func NewHangoutService(requests RequestStore, presence PresenceReader, profiles ProfileDirectory, hub Publisher, ttl time.Duration) *HangoutService {
	return &HangoutService{
		requests: requests,
		presence: presence,
		profiles: profiles,
		hub:      hub,
		ttl:      ttl,
	}
}

// SendRequest validates and persists a new hangout request, then notifies
// the target's live sessions.
func (s *HangoutService) SendRequest(ctx context.Context, fromID, toID string, message *string) (*models.HangoutRequest, error) {
	if fromID == toID {
		return nil, models.ErrSelfRequest
	}

	target, err := s.presence.GetPresence(ctx, toID)
	if err != nil {
		return nil, err
	}
	if !target.IsAvailable {
		return nil, models.ErrTargetUnavailable
	}

	now := time.Now()
	req := &models.HangoutRequest{
		ID:            uuid.New().String(),
		FromProfileID: fromID,
		ToProfileID:   toID,
		Status:        models.StatusPending,
		Message:       message,
		ExpiresAt:     now.Add(s.ttl),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", req.ID).
		Str("from", fromID).
		Str("to", toID).
		Msg("Hangout request created")

	s.notifyRequestSent(ctx, req)
	return req, nil
}

// RespondToRequest accepts or declines a pending request on behalf of its
// target, then notifies the requester's live sessions.
func (s *HangoutService) RespondToRequest(ctx context.Context, requestID, responderID string, accept bool) (*models.HangoutRequest, error) {
	req, err := s.requests.Respond(ctx, requestID, responderID, accept, time.Now())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", req.ID).
		Str("responder", responderID).
		Str("status", string(req.Status)).
		Msg("Hangout request responded")

	s.notifyRequestResponded(ctx, req)
	return req, nil
}

// ListRequests returns a user's sent and received requests, newest first,
// enriched with the counterpart's display info.
func (s *HangoutService) ListRequests(ctx context.Context, userID string) (*models.RequestList, error) {
	sent, received, err := s.requests.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	infoCache := make(map[string]models.DisplayInfo)
	lookup := func(id string) (models.DisplayInfo, error) {
		if info, ok := infoCache[id]; ok {
			return info, nil
		}
		info, err := s.profiles.GetDisplayInfo(ctx, id)
		if err != nil {
			return models.DisplayInfo{}, fmt.Errorf("failed to enrich request list: %w", err)
		}
		infoCache[id] = info
		return info, nil
	}

	list := &models.RequestList{
		Sent:     make([]models.SentRequest, 0, len(sent)),
		Received: make([]models.ReceivedRequest, 0, len(received)),
	}
	for _, req := range sent {
		to, err := lookup(req.ToProfileID)
		if err != nil {
			return nil, err
		}
		list.Sent = append(list.Sent, models.SentRequest{
			ID:        req.ID,
			To:        to,
			Message:   req.Message,
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
			ExpiresAt: req.ExpiresAt,
		})
	}
	for _, req := range received {
		from, err := lookup(req.FromProfileID)
		if err != nil {
			return nil, err
		}
		list.Received = append(list.Received, models.ReceivedRequest{
			ID:        req.ID,
			From:      from,
			Message:   req.Message,
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
			ExpiresAt: req.ExpiresAt,
		})
	}
	return list, nil
}

// notifyRequestSent pushes a hangout_request event to the target. Delivery
// failures never surface to the caller: the request is persisted and the
// target can re-fetch it on reconnect.
func (s *HangoutService) notifyRequestSent(ctx context.Context, req *models.HangoutRequest) {
	from, err := s.profiles.GetDisplayInfo(ctx, req.FromProfileID)
	if err != nil {
		log.Warn().Err(err).Str("request_id", req.ID).Msg("Failed to load sender info for notification")
		return
	}

	event := NewEvent(EventHangoutRequest)
	event.RequestID = req.ID
	event.FromUser = &from
	if req.Message != nil {
		event.Message = *req.Message
	} else {
		event.Message = fmt.Sprintf("%s wants to hang out with you!", from.UserName)
	}

	if delivered := s.hub.Publish(req.ToProfileID, event); delivered == 0 {
		log.Debug().
			Str("request_id", req.ID).
			Str("to", req.ToProfileID).
			Msg("Target offline, hangout_request not delivered")
	}
}

// notifyRequestResponded pushes a hangout_response event to the requester.
func (s *HangoutService) notifyRequestResponded(ctx context.Context, req *models.HangoutRequest) {
	responder, err := s.profiles.GetDisplayInfo(ctx, req.ToProfileID)
	if err != nil {
		log.Warn().Err(err).Str("request_id", req.ID).Msg("Failed to load responder info for notification")
		return
	}

	event := NewEvent(EventHangoutResponse)
	event.RequestID = req.ID
	event.FromUser = &responder
	event.Status = string(req.Status)
	event.Message = fmt.Sprintf("%s %s your hangout request!", responder.UserName, req.Status)

	if delivered := s.hub.Publish(req.FromProfileID, event); delivered == 0 {
		log.Debug().
			Str("request_id", req.ID).
			Str("to", req.FromProfileID).
			Msg("Requester offline, hangout_response not delivered")
	}
}
