package models

import "time"

// ResolveResponse decides the status transition for a respond attempt.
//
// Transitions are one-directional: only a pending request may move, and only
// to accepted, declined or expired. When the request is past its expiry the
// returned status is StatusExpired together with ErrRequestExpired; the
// caller must still persist that transition before surfacing the error.
func ResolveResponse(req *HangoutRequest, responderID string, accept bool, now time.Time) (HangoutStatus, error) {
	if req.ToProfileID != responderID {
		return req.Status, ErrNotRequestTarget
	}
	if req.Status != StatusPending {
		return req.Status, ErrAlreadyResponded
	}
	if now.After(req.ExpiresAt) {
		return StatusExpired, ErrRequestExpired
	}
	if accept {
		return StatusAccepted, nil
	}
	return StatusDeclined, nil
}
