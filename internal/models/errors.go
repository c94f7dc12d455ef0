package models

import "errors"

// Domain errors surfaced by the presence and hangout services. Handlers map
// them to HTTP status codes with errors.Is.
var (
	ErrInvalidCoordinate = errors.New("latitude or longitude out of range")
	ErrNoLocation        = errors.New("user has no reported location")
	ErrUserNotFound      = errors.New("user not found")

	ErrSelfRequest       = errors.New("cannot send a hangout request to yourself")
	ErrTargetUnavailable = errors.New("user is not available for hangouts")
	ErrDuplicatePending  = errors.New("hangout request already sent")
	ErrRequestNotFound   = errors.New("hangout request not found")
	ErrNotRequestTarget  = errors.New("request is addressed to another user")
	ErrAlreadyResponded  = errors.New("request has already been responded to")
	ErrRequestExpired    = errors.New("hangout request has expired")
)
