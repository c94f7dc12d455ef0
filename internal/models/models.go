package models

import "time"

// HangoutStatus is the lifecycle state of a hangout request.
type HangoutStatus string

const (
	StatusPending  HangoutStatus = "pending"
	StatusAccepted HangoutStatus = "accepted"
	StatusDeclined HangoutStatus = "declined"
	StatusExpired  HangoutStatus = "expired"
)

// Profile represents a user profile in the system
type Profile struct {
	ID          string     `json:"id"`
	UserName    string     `json:"userName"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	AvatarURL   *string    `json:"avatarUrl,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	IsAvailable bool       `json:"is_available"`
	IsPublic    bool       `json:"is_public"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserPresence is the location/availability slice of a profile used for
// nearby matching. Coordinates stay nil until the first location report.
type UserPresence struct {
	UserID      string     `json:"user_id"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	IsAvailable bool       `json:"is_available"`
	IsPublic    bool       `json:"is_public"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

// DisplayInfo is the public profile slice carried in notification payloads.
type DisplayInfo struct {
	ID        string  `json:"id"`
	UserName  string  `json:"userName"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// HangoutRequest represents a hangout request between two users
type HangoutRequest struct {
	ID            string        `json:"id"`
	FromProfileID string        `json:"from_profile_id"`
	ToProfileID   string        `json:"to_profile_id"`
	Status        HangoutStatus `json:"status"`
	Message       *string       `json:"message,omitempty"`
	ExpiresAt     time.Time     `json:"expires_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SentRequest is a hangout request as seen by its sender.
type SentRequest struct {
	ID        string        `json:"id"`
	To        DisplayInfo   `json:"to"`
	Message   *string       `json:"message,omitempty"`
	Status    HangoutStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// ReceivedRequest is a hangout request as seen by its target.
type ReceivedRequest struct {
	ID        string        `json:"id"`
	From      DisplayInfo   `json:"from"`
	Message   *string       `json:"message,omitempty"`
	Status    HangoutStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// RequestList partitions a user's hangout requests by role.
type RequestList struct {
	Sent     []SentRequest     `json:"sent"`
	Received []ReceivedRequest `json:"received"`
}

// NearbyUser is one row of a nearby query result.
type NearbyUser struct {
	ID         string  `json:"id"`
	UserName   string  `json:"userName"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	AvatarURL  *string `json:"avatarUrl,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}
